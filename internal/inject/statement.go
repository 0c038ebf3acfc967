package inject

// tracePrefix is the marker carried by every inserted trace line. Grep for it
// in instrumented output to separate trace noise from program output.
const tracePrefix = ">>> "

// Statement returns the trace line inserted for label. The template is fixed:
// an fprintf to stderr, indented one level, terminated with a newline. Two
// requests with the same label always produce byte-identical statements,
// which is what makes the substring idempotence check sound.
func Statement(label string) string {
	return "    fprintf(stderr, \"" + tracePrefix + label + "\\n\");\n"
}
