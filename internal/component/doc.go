// Package component loads software component descriptors from YAML
// definition files. Every call to Load reads and parses the file afresh;
// nothing is cached between calls.
package component
