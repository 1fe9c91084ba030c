package crs

import (
	"fmt"
)

// MathTransform converts coordinate triples.
//
// Implementations must be safe for concurrent use once built.
type MathTransform interface {
	Transform(x, y, z float64) (float64, float64, float64, error)
	Inverse() MathTransform
}

// Step is one element of a Chain.
type Step struct {
	Source    CoordinateSystem
	Target    CoordinateSystem
	Transform MathTransform
}

// Inverse returns the step running from Target to Source.
func (s Step) Inverse() Step {
	return Step{Source: s.Target, Target: s.Source, Transform: s.Transform.Inverse()}
}

func (s Step) String() string {
	return fmt.Sprintf("%s -> %s", csName(s.Source), csName(s.Target))
}

// Chain is an ordered, editable list of steps. Each step's target should be
// the next step's source.
//
// A Chain is not safe for concurrent modification; transforming through a
// chain that is no longer edited is safe.
type Chain struct {
	steps []Step
}

// NewChain creates a chain from steps.
func NewChain(steps ...Step) *Chain {
	return &Chain{steps: append([]Step(nil), steps...)}
}

// Len returns the number of steps.
func (c *Chain) Len() int { return len(c.steps) }

// At returns step i.
func (c *Chain) At(i int) Step { return c.steps[i] }

// Steps returns a copy of the steps.
func (c *Chain) Steps() []Step { return append([]Step(nil), c.steps...) }

// ReplaceAt overwrites step i.
func (c *Chain) ReplaceAt(i int, s Step) error {
	if i < 0 || i >= len(c.steps) {
		return fmt.Errorf("replace step %d: index out of range [0, %d)", i, len(c.steps))
	}
	c.steps[i] = s
	return nil
}

// RemoveAt deletes step i, shifting later steps down.
func (c *Chain) RemoveAt(i int) error {
	if i < 0 || i >= len(c.steps) {
		return fmt.Errorf("remove step %d: index out of range [0, %d)", i, len(c.steps))
	}
	c.steps = append(c.steps[:i], c.steps[i+1:]...)
	return nil
}

// Transform runs the point through every step in order. The first failing
// step stops the chain; its error is wrapped with the step position.
func (c *Chain) Transform(x, y, z float64) (float64, float64, float64, error) {
	for i, s := range c.steps {
		nx, ny, nz, err := s.Transform.Transform(x, y, z)
		if err != nil {
			return x, y, z, fmt.Errorf("step %d (%s): %w", i, s, err)
		}
		x, y, z = nx, ny, nz
	}
	return x, y, z, nil
}

// Inverse returns a new chain with the steps reversed and inverted.
func (c *Chain) Inverse() MathTransform {
	return c.inverse()
}

func (c *Chain) inverse() *Chain {
	inv := &Chain{steps: make([]Step, len(c.steps))}
	for i, s := range c.steps {
		inv.steps[len(c.steps)-1-i] = s.Inverse()
	}
	return inv
}

func csName(cs CoordinateSystem) string {
	if cs == nil {
		return "?"
	}
	return cs.Name()
}

// concat applies transforms in sequence without coordinate-system labels.
type concat []MathTransform

func (c concat) Transform(x, y, z float64) (float64, float64, float64, error) {
	var err error
	for _, t := range c {
		if x, y, z, err = t.Transform(x, y, z); err != nil {
			return x, y, z, err
		}
	}
	return x, y, z, nil
}

func (c concat) Inverse() MathTransform {
	inv := make(concat, len(c))
	for i, t := range c {
		inv[len(c)-1-i] = t.Inverse()
	}
	return inv
}

// identity passes coordinates through.
type identity struct{}

func (identity) Transform(x, y, z float64) (float64, float64, float64, error) { return x, y, z, nil }
func (identity) Inverse() MathTransform { return identity{} }
