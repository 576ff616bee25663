package logger

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field is one structured key/value. Value is what the collector stores;
// addTo writes the typed form to zerolog.
type Field struct {
	Key   string
	Value interface{}
	addTo func(*zerolog.Event)
}

func String(key, value string) Field {
	return Field{Key: key, Value: value, addTo: func(e *zerolog.Event) { e.Str(key, value) }}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value, addTo: func(e *zerolog.Event) { e.Int(key, value) }}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value, addTo: func(e *zerolog.Event) { e.Int64(key, value) }}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value, addTo: func(e *zerolog.Event) { e.Float64(key, value) }}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value, addTo: func(e *zerolog.Event) { e.Bool(key, value) }}
}

// Duration logs whole milliseconds.
func Duration(key string, value time.Duration) Field {
	return Int64(key, value.Milliseconds())
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ","))
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value, addTo: func(e *zerolog.Event) { e.Interface(key, value) }}
}

// Error logs under "error"; a nil error is recorded as null.
func Error(err error) Field {
	f := Field{Key: zerolog.ErrorFieldName, addTo: func(e *zerolog.Event) { e.Err(err) }}
	if err != nil {
		f.Value = err.Error()
	}
	return f
}
