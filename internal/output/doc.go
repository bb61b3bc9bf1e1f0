// Package output encodes reports in the formats the CLI supports.
//
// # Formats
//
//   - text: the value's String method, written verbatim
//   - json: deterministic JSON, keys sorted, floats rounded to 6 decimals,
//     nil and empty values omitted
//   - yaml: gopkg.in/yaml.v3, two-space indentation
//   - toml: github.com/BurntSushi/toml
//
// JSON output is byte-identical for identical input, so golden files stay
// stable across runs. YAML and TOML keep the field order of the encoded
// structs.
package output
