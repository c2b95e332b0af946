package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with structured logging for the toolkit
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a new structured logger configured for container environments
func NewLogger(level, format string) *Logger {
	logger := logrus.New()

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	case "fatal":
		logger.SetLevel(logrus.FatalLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	switch strings.ToLower(format) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		// Default to JSON for containers
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger}
}

// WithComponent adds a component field to all log entries
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

// WithJob adds report job context to log entries
func (l *Logger) WithJob(jobName string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"component": "report_executor",
		"job_name":  jobName,
	})
}

// WithMarket adds market analyzer context to log entries
func (l *Logger) WithMarket() *logrus.Entry {
	return l.WithField("component", "market_analyzer")
}

// WithGear adds equipment optimizer context to log entries
func (l *Logger) WithGear() *logrus.Entry {
	return l.WithField("component", "gear_optimizer")
}

// WithFeed adds price feed context to log entries
func (l *Logger) WithFeed() *logrus.Entry {
	return l.WithField("component", "ge_feed")
}

// WithDiscord adds Discord context to log entries
func (l *Logger) WithDiscord() *logrus.Entry {
	return l.WithField("component", "discord_bot")
}

// WithLLM adds LLM context to log entries
func (l *Logger) WithLLM() *logrus.Entry {
	return l.WithField("component", "llm_client")
}

// WithStorage adds persistence context to log entries
func (l *Logger) WithStorage() *logrus.Entry {
	return l.WithField("component", "storage")
}

// WithUserID adds user context for Discord interactions
func (l *Logger) WithUserID(userID string) *logrus.Entry {
	return l.WithField("user_id", userID)
}

// WithError adds error context to log entries
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.WithField("error", err.Error())
}

// Close provides a no-op close method for compatibility
func (l *Logger) Close() error {
	return nil
}

// SetOutput sets the logger output destination
func (l *Logger) SetOutput(output io.Writer) {
	l.Logger.SetOutput(output)
}

// JobStart logs the start of a report job execution
func (l *Logger) JobStart(jobName string, executionID string) {
	l.WithJob(jobName).WithField("execution_id", executionID).Info("Report job started")
}

// JobComplete logs successful report job completion
func (l *Logger) JobComplete(jobName string, executionID string, duration float64, opportunities int) {
	l.WithJob(jobName).WithFields(logrus.Fields{
		"execution_id":     executionID,
		"duration_seconds": duration,
		"opportunities":    opportunities,
	}).Info("Report job completed")
}

// JobError logs report job failures
func (l *Logger) JobError(jobName string, executionID string, err error, duration float64) {
	l.WithJob(jobName).WithFields(logrus.Fields{
		"execution_id":     executionID,
		"duration_seconds": duration,
		"error":            err.Error(),
	}).Error("Report job failed")
}

// APICall logs outbound API call attempts
func (l *Logger) APICall(component, endpoint string, method string) {
	l.WithField("component", component).WithFields(logrus.Fields{
		"endpoint": endpoint,
		"method":   method,
	}).Debug("API call initiated")
}

// APIError logs outbound API call failures
func (l *Logger) APIError(component, endpoint string, err error, statusCode int) {
	l.WithField("component", component).WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status_code": statusCode,
		"error":       err.Error(),
	}).Error("API call failed")
}

// DiscordError logs Discord API errors
func (l *Logger) DiscordError(action string, err error) {
	l.WithDiscord().WithFields(logrus.Fields{
		"action": action,
		"error":  err.Error(),
	}).Error("Discord operation failed")
}
