// Copyright © 2018 One Concern

package index

import (
	"github.com/oneconcern/zenodotus/pkg/digest"
	"go.uber.org/zap"
)

// Option to configure how an index is opened
type Option func(*settings)

type settings struct {
	scheme string
	create bool
	l      *zap.Logger
	_      struct{} // disallow unkeyed usage
}

// DigestScheme sets the digest scheme recorded when a new index is bootstrapped.
//
// It has no effect on an existing index, which always keeps the scheme it was created with.
func DigestScheme(scheme string) Option {
	return func(s *settings) {
		if scheme == "" {
			scheme = digest.Default
		}
		s.scheme = scheme
	}
}

// Create tells if a missing index file may be created. It defaults to true.
func Create(enabled bool) Option {
	return func(s *settings) {
		s.create = enabled
	}
}

// Logger sets a logger for this index
func Logger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.l = l
		}
	}
}

func defaultSettings() settings {
	return settings{
		scheme: digest.Default,
		create: true,
		l:      zap.NewNop(),
	}
}
