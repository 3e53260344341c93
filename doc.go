// Package reframe provides a rule-driven engine converting payment messages
// between the block structured MT format and the XML based MX format.
//
// Conversions are described by a package of declarative workflows (YAML or
// JSON): each workflow is a list of tasks invoking functions such as map,
// validate, serialize and publish, with JSONLogic rules reading and writing a
// per-request context. Packages are loaded into an immutable registry
// snapshot that can be reloaded without disturbing in-flight requests.
//
//	srv := reframe.New(reframe.WithMetaBaseURL("file:///etc/reframe"))
//	rt := srv.Runtime()
//	_, err := rt.Load(ctx, "package.yaml")
//	result, err := rt.Transform(ctx, input, model.DirectionAuto)
//	fmt.Println(result.Output.Text)
//
// Besides Transform the runtime offers Validate (assertions only), Generate
// (builds a message from caller parameters) and RunScenarios (replays the
// package regression fixtures).
package reframe
