package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/matzehuels/prooftower/pkg/cache"
	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/errors"
	pio "github.com/matzehuels/prooftower/pkg/io"
	"github.com/matzehuels/prooftower/pkg/observability"
	"github.com/matzehuels/prooftower/pkg/proof"
)

// Input is a loaded proof or model together with its content hash.
type Input struct {
	Hash       string
	MapperHash string

	Proof proof.EdgeList       // proof inputs
	Model *counterexample.Data // model inputs
}

// NodeCount returns the number of loaded nodes.
func (in *Input) NodeCount() int {
	if in.Model != nil {
		return len(in.Model.Nodes())
	}
	return len(in.Proof.Nodes)
}

// Load reads the input files named by opts.
func Load(ctx context.Context, opts Options) (*Input, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Kind, opts.Input)
	start := time.Now()

	in, err := load(ctx, opts)
	n := 0
	if in != nil {
		n = in.NodeCount()
	}
	hooks.OnLoadComplete(ctx, opts.Kind, opts.Input, n, time.Since(start), err)
	return in, err
}

func load(ctx context.Context, opts Options) (*Input, error) {
	data, err := readFile(opts.Input)
	if err != nil {
		return nil, err
	}
	in := &Input{Hash: cache.Hash(data)}

	if opts.IsProof() {
		in.Proof, err = pio.ReadProof(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return in, nil
	}

	if opts.Mapper != "" {
		m, err := readFile(opts.Mapper)
		if err != nil {
			return nil, err
		}
		in.MapperHash = cache.Hash(m)
	}
	in.Model, err = pio.LoadCounterexample(ctx, opts.Input, opts.Mapper)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	return data, nil
}
