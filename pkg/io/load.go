package io

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/prooftower/pkg/counterexample"
)

// LoadCounterexample reads the model and, when mapperPath is set, the
// mapper concurrently and applies the mapper to the model.
func LoadCounterexample(ctx context.Context, modelPath, mapperPath string) (*counterexample.Data, error) {
	var (
		data   *counterexample.Data
		mapper map[string]string
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var g errgroup.Group
	g.Go(func() error {
		var err error
		data, err = ImportModel(modelPath)
		return err
	})
	if mapperPath != "" {
		g.Go(func() error {
			var err error
			mapper, err = ImportMapper(mapperPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if mapper != nil {
		data.ApplyMapper(mapper)
	}
	return data, nil
}
