// This file re-exports the configuration surface so callers can tune the
// pipeline through the root package alone.
package goshot

import (
	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/utils"
)

type (
	// Config holds every setting the pipeline reads, populated from the
	// environment and adjusted through ConfigOption values.
	Config = config.Config

	// ConfigOption mutates a Config before the pipeline is wired.
	ConfigOption = config.ConfigOption

	// LogLevel controls pipeline log verbosity.
	LogLevel = utils.LogLevel
)

const (
	LogLevelOff   = utils.LogLevelOff
	LogLevelError = utils.LogLevelError
	LogLevelWarn  = utils.LogLevelWarn
	LogLevelInfo  = utils.LogLevelInfo
	LogLevelDebug = utils.LogLevelDebug
)

var (
	SetProvider          = config.SetProvider
	SetModel             = config.SetModel
	SetEmbeddingModel    = config.SetEmbeddingModel
	SetRegion            = config.SetRegion
	SetAPIKey            = config.SetAPIKey
	SetTemperature       = config.SetTemperature
	SetMaxTokens         = config.SetMaxTokens
	SetTopP              = config.SetTopP
	SetTimeout           = config.SetTimeout
	SetMaxRetries        = config.SetMaxRetries
	SetRetryDelay        = config.SetRetryDelay
	SetRequestsPerMinute = config.SetRequestsPerMinute
	SetSystemPrompt      = config.SetSystemPrompt
	SetExampleCount      = config.SetExampleCount
	SetExamples          = config.SetExamples
	SetDisableSelector   = config.SetDisableSelector
	SetLogLevel          = config.SetLogLevel
	SetExtraHeaders      = config.SetExtraHeaders
)
