// staticlint набор анализаторов проекта:
//   - стандартные анализаторы golang.org/x/tools/go/analysis/passes;
//   - все анализаторы класса SA и выборочно остальные классы staticcheck.io;
//   - testifylint и bodyclose;
//   - собственный анализатор: os.Exit в функции main пакета main и panic в пакете drive.
//
// запуск: staticlint ./...
package main

import (
	"strings"

	"github.com/Antonboom/testifylint/analyzer"
	"github.com/kTowkA/driveproxy/internal/linter"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/slog"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/quickfix"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// selected анализатор проходит отбор, если его имя начинается с prefix или перечислено в names
type selected struct {
	prefix string
	names  []string
}

func (s selected) match(name string) bool {
	if s.prefix != "" && strings.HasPrefix(name, s.prefix) {
		return true
	}
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func pick(from []*lint.Analyzer, s selected) []*analysis.Analyzer {
	res := make([]*analysis.Analyzer, 0, len(from))
	for _, v := range from {
		if s.match(v.Analyzer.Name) {
			res = append(res, v.Analyzer)
		}
	}
	return res
}

func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		printf.Analyzer,
		slog.Analyzer,
		unreachable.Analyzer,
		loopclosure.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,

		analyzer.New(),
		bodyclose.Analyzer,
		linter.NewAnalyzerNotRecommended().Analyzer(),
	}
	checks = append(checks, pick(staticcheck.Analyzers, selected{prefix: "SA"})...)
	checks = append(checks, pick(quickfix.Analyzers, selected{names: []string{"QF1004", "QF1009"}})...)
	checks = append(checks, pick(simple.Analyzers, selected{names: []string{"S1001", "S1040"}})...)
	checks = append(checks, pick(stylecheck.Analyzers, selected{names: []string{"ST1015", "ST1022"}})...)
	return checks
}

func main() {
	multichecker.Main(analyzers()...)
}
