package forge

import "errors"

// ErrInvalidRequest indicates a generation request missing its required
// fields: at least one of prompt, wizard or an inline spec must be present.
var ErrInvalidRequest = errors.New("invalid request: need spec, prompt or wizard")

// ErrNoSpecProducer indicates a request needed the external model but no
// producer was configured.
var ErrNoSpecProducer = errors.New("no spec producer configured")
