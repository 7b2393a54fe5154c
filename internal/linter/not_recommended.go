// Package linter собственный анализатор для staticlint: запрет вызова нерекомендуемых функций в заданных пакетах и функциях
package linter

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

const (
	// notRecommendedText текст для сообщении о нежелательности использования некоторых функций
	notRecommendedText = "not recommended function"
)

// NotRecommended структура содержащая информацию о нерекомендованных к использованию функций
type NotRecommended struct {
	// Pkg в каких пакетах нельзя использовать. если не указано ничего, ищется во всех пакетах
	Pkg string
	// FromFunction из какой функции нельзя вызывать нерекомендованную функцию. если не указано ничего, ищется во всех функциях
	FromFunction string
	// Function функция не рекомендованная к использованию
	Function NotRecommendedFunc
}

// NotRecommendedFunc функция не рекомендованная к использованию
type NotRecommendedFunc struct {
	// Pkg путь импорта пакета функции. Пустой для встроенных функций и функций того же пакета
	Pkg string
	// Name имя функции
	Name string
}

// defaultNotRecommendedFuncs правила по умолчанию
var defaultNotRecommendedFuncs = []NotRecommended{
	{
		// в пакете main нельзя использовать os.Exit в функции main
		Pkg:          "main",
		FromFunction: "main",
		Function: NotRecommendedFunc{
			Pkg:  "os",
			Name: "Exit",
		},
	},
	{
		// разбор ссылок сообщает об ошибках только через error
		Pkg: "drive",
		Function: NotRecommendedFunc{
			Name: "panic",
		},
	},
}

// AnalyzerNotRecommended анализатор нерекомендуемых к использованию функций
type AnalyzerNotRecommended struct {
	notRecommendedFuncs []NotRecommended
}

// NewAnalyzerNotRecommended создает новый анализатор с правилами cfg, при их отсутствии берет правила по умолчанию
func NewAnalyzerNotRecommended(cfg ...NotRecommended) *AnalyzerNotRecommended {
	anr := new(AnalyzerNotRecommended)
	anr.notRecommendedFuncs = defaultNotRecommendedFuncs
	return anr.SetConfig(cfg...)
}

// SetConfig заменяет правила анализатора. Пустой cfg оставляет текущие правила
func (anr *AnalyzerNotRecommended) SetConfig(cfg ...NotRecommended) *AnalyzerNotRecommended {
	if len(cfg) != 0 {
		anr.notRecommendedFuncs = cfg
	}
	return anr
}

// Name возвращает имя анализатора AnalyzerNotRecommended
func (anr *AnalyzerNotRecommended) Name() string {
	return "notrecommendedfuncs"
}

// Doc возвращает описание анализатора AnalyzerNotRecommended
func (anr *AnalyzerNotRecommended) Doc() string {
	return "Checking for undesirability of using functions"
}

// Run реализация функции запуска анализатора
func (anr *AnalyzerNotRecommended) Run(pass *analysis.Pass) (interface{}, error) {
	for _, nrf := range anr.notRecommendedFuncs {
		// правило без имени функции ничего не запрещает
		if nrf.Function.Name == "" {
			continue
		}
		// если в правиле указан пакет и пакет не совпадает, то нечего и смотреть далее
		if nrf.Pkg != "" && pass.Pkg.Name() != nrf.Pkg {
			continue
		}
		for _, file := range pass.Files {
			ast.Inspect(file, func(n ast.Node) bool {
				switch x := n.(type) {
				case *ast.FuncDecl:
					// вызов запрещен только из функции FromFunction
					if nrf.FromFunction != "" && x.Name.Name != nrf.FromFunction {
						return false
					}
				case *ast.CallExpr:
					pkg, name := callee(pass, x)
					if pkg == nrf.Function.Pkg && name == nrf.Function.Name {
						pass.Reportf(x.Pos(), notRecommendedText)
					}
				}
				return true
			})
		}
	}
	return nil, nil
}

// callee путь пакета и имя вызываемой функции. Для методов и вызовов через переменные имя пустое
func callee(pass *analysis.Pass, call *ast.CallExpr) (string, string) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		switch pass.TypesInfo.Uses[fn].(type) {
		case *types.Builtin, *types.Func:
			return "", fn.Name
		}
	case *ast.SelectorExpr:
		id, ok := fn.X.(*ast.Ident)
		if !ok {
			return "", ""
		}
		if pkgName, ok := pass.TypesInfo.Uses[id].(*types.PkgName); ok {
			return pkgName.Imported().Path(), fn.Sel.Name
		}
	}
	return "", ""
}

// Analyzer создание экземпляра *analysis.Analyzer
func (anr *AnalyzerNotRecommended) Analyzer() *analysis.Analyzer {
	return &analysis.Analyzer{
		Name: anr.Name(),
		Doc:  anr.Doc(),
		Run:  anr.Run,
	}
}
