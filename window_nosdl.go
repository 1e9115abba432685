//go:build nosdl

package main

import (
	"github.com/pkg/errors"

	"github.com/sheikhrachel/lifegrid/utils"
)

func newWindowRenderer(utils.Config) (renderer, error) {
	return nil, errors.New("[newWindowRenderer] built with nosdl, use --renderer terminal or text")
}
