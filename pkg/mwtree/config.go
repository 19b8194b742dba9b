// Copyright 2023 TiKV Project Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mwtree

import (
	"strings"

	"github.com/tikv/mwtree/pkg/errs"
)

// Variant selects the tree layout.
type Variant int

const (
	// VariantBTree keeps values next to their keys on every level.
	VariantBTree Variant = iota
	// VariantBPlusTree keeps values in leaves only and chains the leaves.
	VariantBPlusTree
)

func (v Variant) String() string {
	switch v {
	case VariantBTree:
		return "btree"
	case VariantBPlusTree:
		return "bplustree"
	}
	return "unknown"
}

// ParseVariant translates a variant name to Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "btree", "b-tree", "b":
		return VariantBTree, nil
	case "bplustree", "b+tree", "b+", "bplus":
		return VariantBPlusTree, nil
	}
	return 0, errs.ErrUnknownVariant.GenWithStackByArgs(s)
}

// DuplicatePolicy decides what Insert does with a key that is already stored.
type DuplicatePolicy int

const (
	// DuplicateOverwrite replaces the stored value.
	DuplicateOverwrite DuplicatePolicy = iota
	// DuplicateReject leaves the tree untouched and returns ErrDuplicateKey.
	DuplicateReject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateOverwrite:
		return "overwrite"
	case DuplicateReject:
		return "reject"
	}
	return "unknown"
}

// ParseDuplicatePolicy translates a policy name to DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "overwrite", "":
		return DuplicateOverwrite, nil
	case "reject":
		return DuplicateReject, nil
	}
	return 0, errs.ErrUnknownDuplicatePolicy.GenWithStackByArgs(s)
}

const (
	// MinOrder is the smallest order any variant accepts.
	MinOrder = 3
	// DefaultMaxOrder is the upper bound on order unless configured otherwise.
	DefaultMaxOrder = 10

	defaultBTreeOrder     = 3
	defaultBPlusTreeOrder = 5
)

// Config holds the construction parameters of a tree.
//
// For VariantBTree, Order is the minimum degree t: nodes hold at most 2t-1
// keys and non-root nodes at least t-1. For VariantBPlusTree, Order is the
// fanout m: nodes hold at most m keys and non-root nodes at least ceil(m/2).
type Config struct {
	Variant   Variant
	Order     int
	MaxOrder  int
	Duplicate DuplicatePolicy
}

// Option is a functional option for Config.
type Option func(*Config)

// WithVariant sets the tree variant.
func WithVariant(v Variant) Option {
	return func(c *Config) {
		c.Variant = v
	}
}

// WithOrder sets the order.
func WithOrder(order int) Option {
	return func(c *Config) {
		c.Order = order
	}
}

// WithMaxOrder sets the largest order accepted by Validate.
func WithMaxOrder(maxOrder int) Option {
	return func(c *Config) {
		c.MaxOrder = maxOrder
	}
}

// WithDuplicatePolicy sets the duplicate key policy.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *Config) {
		c.Duplicate = p
	}
}

// NewConfig returns a config with defaults applied before the options.
// A variant given by option gets that variant's default order unless an order
// is given too.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	cfg.Adjust()
	return cfg
}

// Adjust fills zero fields with defaults.
func (c *Config) Adjust() {
	if c.MaxOrder == 0 {
		c.MaxOrder = DefaultMaxOrder
	}
	if c.Order == 0 {
		switch c.Variant {
		case VariantBPlusTree:
			c.Order = defaultBPlusTreeOrder
		default:
			c.Order = defaultBTreeOrder
		}
	}
}

// Validate checks the config. A zero MaxOrder means DefaultMaxOrder.
func (c *Config) Validate() error {
	maxOrder := c.MaxOrder
	if maxOrder == 0 {
		maxOrder = DefaultMaxOrder
	}
	if maxOrder < MinOrder {
		return errs.ErrInvalidMaxOrder.GenWithStackByArgs(maxOrder, MinOrder)
	}
	if c.Order < MinOrder || c.Order > maxOrder {
		return errs.ErrInvalidOrder.GenWithStackByArgs(c.Order, MinOrder, maxOrder)
	}
	switch c.Variant {
	case VariantBTree, VariantBPlusTree:
	default:
		return errs.ErrUnknownVariant.GenWithStackByArgs(int(c.Variant))
	}
	switch c.Duplicate {
	case DuplicateOverwrite, DuplicateReject:
	default:
		return errs.ErrUnknownDuplicatePolicy.GenWithStackByArgs(int(c.Duplicate))
	}
	return nil
}
