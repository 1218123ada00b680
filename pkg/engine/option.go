package engine

import "math/rand/v2"

type options struct {
	statementLimit uint32
	rng            *rand.Rand
}

// apply apply options
func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// setDefault default configuration
func (o *options) setDefault() {
	if o.statementLimit == 0 {
		o.statementLimit = defaultStatementLimit
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

type Option func(*options)

// WithStatementLimit sets the statement evaluation limit
func WithStatementLimit(n uint32) Option {
	return func(o *options) {
		o.statementLimit = n
	}
}

// WithRand sets the random source used for shuffling
// 测试中注入固定种子可让洗牌结果可复现
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}
