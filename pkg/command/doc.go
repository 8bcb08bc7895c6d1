// Package command turns free-text requests into macro invocations.
//
// A language model (or the deterministic PhraseInterpreter) answers a request with a
// response that embeds an actions object:
//
//	alright, here you go {"actions":[{"move":{"obj":"0"}},{"grow":{"factor":"2"}}]}
//
// Parse extracts the actions in order and Dispatcher runs each one against a MacroRunner.
package command
