//go:build wireinject

package main

import (
	"github.com/google/wire"
)

func BuildApp(args Args) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
