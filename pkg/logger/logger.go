package logger

import (
	"go.uber.org/zap"
)

// NOOPLogger discards everything. It is the default for servers built in tests.
var NOOPLogger = zap.NewNop().Sugar()

// New returns a human-readable development logger for local runs and a JSON
// production logger everywhere else.
func New(appEnv string) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	switch appEnv {
	case "", "local":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar().With("app_env", appEnv), nil
}
