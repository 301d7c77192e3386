package log

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// registerWarningSink routes warnings raised through pkg/errors into a
// zerolog logger. Warning types that implement zerolog.LogObjectMarshaler
// come out as structured events; everything else falls back to the
// error message.
func registerWarningSink() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	errors.SetZerologWarnFunc(func(warning error) {
		ev := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(obj).Msg("warning")
			return
		}
		ev.Err(warning).Msg("warning")
	})
}
