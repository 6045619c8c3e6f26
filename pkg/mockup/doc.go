// Package mockup provides a pipeline stage rendering data files into markup.
//
// Each file is evaluated into a data mapping (see package evaluator), the data names a template through a
// configurable property, and the template is rendered with the data by an engine (see package engine). The file
// contents are replaced with the rendered markup. Files that name no template, or a template that cannot be found
// under any search directory, are dropped from the stream and reported in the log:
//
//	[DONE] blog/post.lua (post.njk)
//	[MISSING] blog/draft.lua
//	[UNDEFINED] partials/nav.lua
//
// Load, evaluation and render failures are returned as *PluginError values and never leave a partially processed
// file behind.
//
// A Transform owns a single engine shared by every file it processes. Process holds no state between calls, so a
// Transform can be used by any number of goroutines at once:
//
//	stage, err := mockup.New(mockup.WithTemplateDirectories("templates"))
//	...
//	step, err := pipeline.AddStepOneToOneOrZero(pipe, "mockup", files, stage.Process,
//		pipeline.StepConcurrency[*file.File](4))
package mockup
