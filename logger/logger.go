package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

func init() {
	// Never nil, even before main calls Init (tests import packages that log).
	Log = zap.NewNop().Sugar()
}

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar().Named("bisca")
}

// InitDevelopment switches to the console encoder, used by the test client.
func InitDevelopment() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar().Named("bisca")
}
