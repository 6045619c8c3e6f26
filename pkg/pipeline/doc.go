// Package pipeline provides a channel based pipeline for processing streams of items.
//
// A pipeline is built from root steps producing items, intermediate steps transforming them, mergers joining
// several streams and sinks consuming the result. Every step runs in its own goroutines and talks to its
// neighbours through channels, so stages execute concurrently without further synchronisation. A step can fan
// out to several workers with StepConcurrency.
//
// Steps added with AddStepOneToOneOrZero drop the zero value of their output type, which lets a step remove an
// item from the stream (for instance a nil *file.File) without reporting an error.
//
// The pipeline stops on the first error: Run cancels the context shared by every step and returns the error
// decorated with the name of the step that produced it.
package pipeline
