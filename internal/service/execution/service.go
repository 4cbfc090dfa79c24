package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/execengine"
	"github.com/vovakirdan/coderoom-server/internal/language"
	"github.com/vovakirdan/coderoom-server/internal/store"
)

// DefaultExecuteTimeout bounds a single remote execution.
const DefaultExecuteTimeout = 25 * time.Second

const resultOK = "ok"

// Result is the normalized output of a run.
type Result struct {
	Out string `json:"out"`
	Err string `json:"err"`
}

// Service resolves languages through the catalog and dispatches runs to the
// engine. It never touches room state.
type Service struct {
	catalog *Catalog
	engine  execengine.Engine
	timeout time.Duration
	audit   store.RunStore
	log     *zerolog.Logger
}

// New creates an execution service. audit may be nil.
func New(catalog *Catalog, engine execengine.Engine, timeout time.Duration, audit store.RunStore, logger *zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultExecuteTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		catalog: catalog,
		engine:  engine,
		timeout: timeout,
		audit:   audit,
		log:     logger,
	}
}

// Runtimes exposes the cached runtime list.
func (s *Service) Runtimes(ctx context.Context) ([]execengine.Runtime, error) {
	return s.catalog.Runtimes(ctx)
}

// Run executes code and returns its output. Every failure is an *Error.
func (s *Service) Run(ctx context.Context, lang, code, stdin string) (*Result, error) {
	start := time.Now()
	rt, res, err := s.run(ctx, lang, code, stdin)

	outcome := resultOK
	var execErr *Error
	if errors.As(err, &execErr) {
		outcome = execErr.Code
	}
	s.record(ctx, lang, rt.Version, outcome, time.Since(start))

	event := s.log.Info()
	if err != nil {
		event = s.log.Warn().Err(err)
	}
	event.Str("language", lang).Str("version", rt.Version).Str("result", outcome).
		Dur("took", time.Since(start)).Msg("code run")

	return res, err
}

// RunCode adapts Run to the hub's runner interface.
func (s *Service) RunCode(ctx context.Context, lang, code, stdin string) (string, string, error) {
	res, err := s.Run(ctx, lang, code, stdin)
	if err != nil {
		return "", "", err
	}
	return res.Out, res.Err, nil
}

func (s *Service) run(ctx context.Context, lang, code, stdin string) (rt execengine.Runtime, res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, serverError(fmt.Sprint(r))
		}
	}()

	rt, ok := s.catalog.Resolve(ctx, lang)
	if !ok {
		return rt, nil, unsupportedLanguage(lang)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.engine.Execute(ctx, &execengine.Request{
		Language: rt.Language,
		Version:  rt.Version,
		Files:    []execengine.File{{Name: language.Filename(rt.Language), Content: code}},
		Stdin:    stdin,
	})
	if err != nil {
		var statusErr *execengine.StatusError
		if errors.As(err, &statusErr) {
			return rt, nil, serviceError(statusErr.Message)
		}
		return rt, nil, networkError(err.Error())
	}
	if resp == nil {
		return rt, nil, serviceError("empty response")
	}

	return rt, &Result{Out: resp.Run.Stdout, Err: mergeStderr(resp)}, nil
}

// mergeStderr joins compile and run stderr, compile first.
func mergeStderr(resp *execengine.Response) string {
	var compile string
	if resp.Compile != nil {
		compile = resp.Compile.Stderr
	}
	run := resp.Run.Stderr
	switch {
	case compile != "" && run != "":
		return compile + "\n" + run
	case compile != "":
		return compile
	default:
		return run
	}
}

func (s *Service) record(ctx context.Context, lang, version, outcome string, took time.Duration) {
	if s.audit == nil {
		return
	}
	rec := &store.RunRecord{
		Language:   lang,
		Version:    version,
		Result:     outcome,
		DurationMs: took.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.audit.SaveRun(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Warn().Err(err).Msg("failed to record run")
	}
}
