// Package layout assigns pipeline stages to visual columns for a
// left-to-right dependency diagram. Each stage gets a depth strictly greater
// than the depth of anything it depends on; stages sharing a depth form one
// column. Unresolvable references are ignored and cycles are broken
// deterministically, so layout always terminates and never fails.
package layout
