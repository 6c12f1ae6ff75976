package core

import (
	"errors"
)

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// The Core must be configured with a Verifier and a KeySource.
//
// Example:
//
//	store, _ := secrets.LoadFile("/var/local/secrets.json")
//	v, _ := validator.New(validator.WithAlgorithm(validator.RS256))
//	c, err := core.New(
//	    core.WithVerifier(v),
//	    core.WithKeySource(store),
//	    core.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{
		secretName: DefaultSecretName,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate ensures all required fields are set.
func (c *Core) validate() error {
	if c.verifier == nil {
		return NewValidationError(
			ErrorCodeVerifierNotSet,
			"verifier is required but not set (use WithVerifier option)",
			nil,
		)
	}
	if c.keys == nil {
		return NewValidationError(
			ErrorCodeKeySourceNotSet,
			"key source is required but not set (use WithKeySource option)",
			nil,
		)
	}
	return nil
}

// WithVerifier sets the per-key signature verifier. This is a required option.
func WithVerifier(verifier Verifier) Option {
	return func(c *Core) error {
		if verifier == nil {
			return errors.New("verifier cannot be nil")
		}
		c.verifier = verifier
		return nil
	}
}

// WithKeySource sets where verification keys come from. This is a required option.
func WithKeySource(keys KeySource) Option {
	return func(c *Core) error {
		if keys == nil {
			return errors.New("key source cannot be nil")
		}
		c.keys = keys
		return nil
	}
}

// WithSecretName overrides the secret the key set is read from.
//
// Default: DefaultSecretName
func WithSecretName(name string) Option {
	return func(c *Core) error {
		if name == "" {
			return errors.New("secret name cannot be empty")
		}
		c.secretName = name
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// Key-source failures are logged at warn; per-key verification failures are
// expected during rotation and are only logged at debug.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
