package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/drive"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/probe"
	"github.com/kTowkA/driveproxy/internal/storage"
	"github.com/kTowkA/driveproxy/internal/storage/memory"
	"github.com/stretchr/testify/suite"
)

const (
	testPage = "http://localhost:8080/"
	firstID  = "1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7"
	secondID = "2abcdefghijklmnopqrstuvwxyzABCDE"
)

// gateProber отвечает на проверку только когда тест разрешит это через release
type gateProber struct {
	mu      sync.Mutex
	gates   map[string]chan error
	started chan string
}

func newGateProber() *gateProber {
	return &gateProber{
		gates:   make(map[string]chan error),
		started: make(chan string, 10),
	}
}

func (p *gateProber) gate(url string) chan error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.gates[url]; !ok {
		p.gates[url] = make(chan error, 1)
	}
	return p.gates[url]
}

func (p *gateProber) release(url string, err error) {
	p.gate(url) <- err
}

func (p *gateProber) Check(ctx context.Context, url string) error {
	gate := p.gate(url)
	p.started <- url
	select {
	case err := <-gate:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitProber ждет, пока не истечет контекст проверки
type waitProber struct{}

func (waitProber) Check(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

// testClock ручные часы для проверки очистки
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func withClock(clock *testClock) Option {
	return func(c *Controller) {
		c.now = clock.Now
	}
}

type controllerSuite struct {
	suite.Suite
	db     *memory.Storage
	prober *gateProber
	ctrl   *Controller
}

func (suite *controllerSuite) SetupTest() {
	db, err := memory.NewStorage("")
	suite.Require().NoError(err)
	suite.db = db
	suite.prober = newGateProber()
	suite.ctrl = New(db, suite.prober, slog.Default())
}

func (suite *controllerSuite) TearDownTest() {
	suite.ctrl.Close()
	suite.Require().NoError(suite.db.Close())
}

func (suite *controllerSuite) waitStarted(url string) {
	select {
	case got := <-suite.prober.started:
		suite.Require().Equal(url, got)
	case <-time.After(5 * time.Second):
		suite.FailNow("проверка не запустилась")
	}
}

func (suite *controllerSuite) waitProbe(profileID uuid.UUID, want model.ProbeStatus) {
	suite.Eventually(func() bool {
		result, ok := suite.ctrl.Current(profileID)
		return ok && result.Probe == want
	}, 5*time.Second, 10*time.Millisecond)
}

func (suite *controllerSuite) TestSubmit() {
	ctx := context.Background()
	user := uuid.New()
	input := "https://drive.google.com/file/d/" + firstID + "/view"

	result, err := suite.ctrl.Submit(ctx, user, input, testPage)
	suite.Require().NoError(err)
	suite.EqualValues(input, result.Input)
	suite.EqualValues(firstID, result.Links.FileID)
	suite.EqualValues("https://drive.google.com/uc?export=view&id="+firstID, result.Links.Direct)
	suite.EqualValues(model.ProbePending, result.Probe)

	last, err := suite.db.Get(ctx, user, storage.KeyLastInput)
	suite.Require().NoError(err)
	suite.EqualValues(input, last)
	_, err = suite.db.Get(ctx, user, storage.KeyLastGenerated)
	suite.NoError(err)

	suite.waitStarted(result.Links.Direct)
	suite.prober.release(result.Links.Direct, nil)
	suite.waitProbe(user, model.ProbeAvailable)
}

func (suite *controllerSuite) TestSubmitUnreachable() {
	user := uuid.New()
	result, err := suite.ctrl.Submit(context.Background(), user, firstID, testPage)
	suite.Require().NoError(err)

	suite.waitStarted(result.Links.Direct)
	suite.prober.release(result.Links.Direct, probe.ErrUnreachable)
	suite.waitProbe(user, model.ProbeUnavailable)
}

func (suite *controllerSuite) TestSubmitErrors() {
	user := uuid.New()
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{"пусто", "  ", drive.ErrNotFound},
		{"не ссылка", "not a link", drive.ErrNotFound},
		{"короткий идентификатор", "https://drive.google.com/file/d/abc/view", drive.ErrInvalidIdentifier},
	}
	for _, tt := range tests {
		_, err := suite.ctrl.Submit(context.Background(), user, tt.raw, testPage)
		suite.ErrorIs(err, tt.err, tt.name)
		suite.EqualValues(model.SeverityWarning, Notification(err).Severity, tt.name)
	}
	_, ok := suite.ctrl.Current(user)
	suite.False(ok)
}

func (suite *controllerSuite) TestOpen() {
	ctx := context.Background()
	user := uuid.New()

	result, err := suite.ctrl.Open(ctx, user, firstID, testPage)
	suite.Require().NoError(err)
	suite.EqualValues(drive.ViewURL(firstID), result.Input)
	suite.EqualValues("http://localhost:8080/viewer.html?id="+firstID, result.Links.Proxy)

	_, err = suite.ctrl.Open(ctx, user, "https://drive.google.com/file/d/"+firstID+"/view", testPage)
	suite.ErrorIs(err, drive.ErrInvalidIdentifier)

	current, ok := suite.ctrl.Current(user)
	suite.True(ok)
	suite.EqualValues(result.Generation, current.Generation)
}

// результат проверки первой ссылки не должен попасть в результат второй
func (suite *controllerSuite) TestStaleProbeDiscarded() {
	ctx := context.Background()
	user := uuid.New()

	first, err := suite.ctrl.Submit(ctx, user, firstID, testPage)
	suite.Require().NoError(err)
	suite.waitStarted(first.Links.Direct)

	second, err := suite.ctrl.Submit(ctx, user, secondID, testPage)
	suite.Require().NoError(err)
	suite.Greater(second.Generation, first.Generation)
	suite.waitStarted(second.Links.Direct)

	// первая проверка уже отменена, ее ответ никто не прочитает
	suite.prober.release(first.Links.Direct, nil)
	time.Sleep(50 * time.Millisecond)
	current, ok := suite.ctrl.Current(user)
	suite.Require().True(ok)
	suite.EqualValues(second.Generation, current.Generation)
	suite.EqualValues(model.ProbePending, current.Probe)

	suite.prober.release(second.Links.Direct, errors.New("нет ответа"))
	suite.waitProbe(user, model.ProbeUnavailable)
	current, _ = suite.ctrl.Current(user)
	suite.EqualValues(secondID, current.Links.FileID)
}

func (suite *controllerSuite) TestProfilesIsolated() {
	ctx := context.Background()
	user1 := uuid.New()
	user2 := uuid.New()

	r1, err := suite.ctrl.Submit(ctx, user1, firstID, testPage)
	suite.Require().NoError(err)
	suite.waitStarted(r1.Links.Direct)

	r2, err := suite.ctrl.Submit(ctx, user2, secondID, testPage)
	suite.Require().NoError(err)
	suite.waitStarted(r2.Links.Direct)

	suite.prober.release(r1.Links.Direct, nil)
	suite.waitProbe(user1, model.ProbeAvailable)

	current, ok := suite.ctrl.Current(user2)
	suite.Require().True(ok)
	suite.EqualValues(model.ProbePending, current.Probe)

	suite.ctrl.Forget(user2)
	_, ok = suite.ctrl.Current(user2)
	suite.False(ok)
}

// зависшая проверка завершается по истечении времени и помечает изображение недоступным
func (suite *controllerSuite) TestProbeTimeout() {
	ctrl := New(suite.db, waitProber{}, slog.Default(), WithProbeTimeout(100*time.Millisecond))
	defer ctrl.Close()

	users := make([]uuid.UUID, 50)
	for i := range users {
		users[i] = uuid.New()
		_, err := ctrl.Submit(context.Background(), users[i], firstID, testPage)
		suite.Require().NoError(err)
	}
	for _, user := range users {
		suite.Eventually(func() bool {
			result, ok := ctrl.Current(user)
			return ok && result.Probe == model.ProbeUnavailable
		}, 2*time.Second, 10*time.Millisecond)
	}
}

func (suite *controllerSuite) TestEvict() {
	const ttl = 10 * time.Minute
	clock := &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	ctrl := New(suite.db, waitProber{}, slog.Default(), WithSessionTTL(ttl), withClock(clock))
	defer ctrl.Close()

	active := uuid.New()
	idle := []uuid.UUID{uuid.New(), uuid.New()}
	for _, user := range append([]uuid.UUID{active}, idle...) {
		_, err := ctrl.Submit(context.Background(), user, firstID, testPage)
		suite.Require().NoError(err)
	}

	clock.add(ttl / 2)
	suite.EqualValues(0, ctrl.evict(clock.Now()))
	// обращение продлевает жизнь результата
	_, ok := ctrl.Current(active)
	suite.Require().True(ok)

	clock.add(ttl/2 + time.Second)
	suite.EqualValues(len(idle), ctrl.evict(clock.Now()))

	_, ok = ctrl.Current(active)
	suite.True(ok)
	for _, user := range idle {
		_, ok = ctrl.Current(user)
		suite.False(ok)
	}

	// проверки удаленных результатов отменены, Close не зависает
	clock.add(2 * ttl)
	suite.EqualValues(1, ctrl.evict(clock.Now()))
	ctrl.mu.Lock()
	suite.Empty(ctrl.sessions)
	ctrl.mu.Unlock()
}

func (suite *controllerSuite) TestSweepInterval() {
	suite.EqualValues(time.Second, sweepInterval(time.Second))
	suite.EqualValues(15*time.Minute, sweepInterval(30*time.Minute))
}

func (suite *controllerSuite) TestNotification() {
	suite.EqualValues(model.SeverityError, Notification(probe.ErrUnreachable).Severity)
	suite.EqualValues(model.SeverityError, Notification(errors.New("другое")).Severity)
	suite.EqualValues("Неверный формат ссылки Google Drive", Notification(drive.ErrNotFound).Message)
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(controllerSuite))
}
