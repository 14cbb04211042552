// Copyright © 2018 One Concern

package vault

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option to configure vault operations
type Option func(*settings)

type settings struct {
	fs afero.Fs
	l  *zap.Logger
}

// Fs sets the file system holding the vault and the source files. It defaults to the OS file system.
//
// The index itself is always a file on the OS file system.
func Fs(fs afero.Fs) Option {
	return func(s *settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger sets a logger for vault operations
func Logger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.l = l
		}
	}
}

func defaultSettings() settings {
	return settings{
		fs: afero.NewOsFs(),
		l:  zap.NewNop(),
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(&s)
	}
	return s
}
