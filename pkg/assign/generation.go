package assign

import (
	"strconv"
	"strings"
)

const generationSep = "~"

// nextGeneration derives a replacement task's name from its predecessor's.
// Names carry a trailing "~<n>" generation marker so that a task's history
// is legible from its name alone; the authoritative lineage record is
// still Task.Dependencies, not this naming convention.
func nextGeneration(name TaskName) TaskName {
	base, gen := splitGeneration(name)
	return TaskName(base + generationSep + strconv.Itoa(gen+1))
}

func splitGeneration(name TaskName) (string, int) {
	s := string(name)
	idx := strings.LastIndex(s, generationSep)
	if idx < 0 {
		return s, 0
	}
	n, err := strconv.Atoi(s[idx+len(generationSep):])
	if err != nil {
		return s, 0
	}
	return s[:idx], n
}
