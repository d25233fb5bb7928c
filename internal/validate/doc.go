// Package validate owns the value validation and translation engine.
//
// Ownership boundary:
// - Validator and Translator leaf units
// - Step (translate then check) and type-chained Pipeline composition
// - reusable combinators, translators and preset pipelines
//
// Values are accepted loosely, checked strictly, and rendered
// deterministically. Every unit is pure: validating a value never
// mutates it, and translating the same value twice yields the same result.
package validate
