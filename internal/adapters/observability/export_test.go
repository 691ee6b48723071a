package observability

var NewLoggerTo = newLogger
