package pipeline

import cperrors "github.com/matzehuels/critpath/pkg/errors"

// Response is the wire form of a run, returned by the HTTP endpoint and by
// the CLI's --json output. Every outcome is carried in its fields; a blocked
// run is a successful response with Valid false.
type Response struct {
	Valid                bool       `json:"valid"`
	Blocked              bool       `json:"blocked"`
	CircularDependencies []Cycle    `json:"circular_dependencies"`
	CriticalPath         [][]string `json:"critical_path"`
	TasksAdjusted        int        `json:"tasks_adjusted"`
	Warnings             []string   `json:"warnings"`
}

// Cycle is one reported dependency cycle, in traversal order.
type Cycle struct {
	Path []string `json:"path"`
}

// Response converts the result to its wire form. Slices are never nil so
// they encode as empty JSON arrays.
func (r *Result) Response() Response {
	resp := Response{
		Valid:                r.Valid(),
		Blocked:              r.Blocked,
		CircularDependencies: make([]Cycle, 0, len(r.Cycles)),
		CriticalPath:         make([][]string, 0, len(r.CriticalPaths)),
		TasksAdjusted:        r.TasksAdjusted,
		Warnings:             cperrors.Strings(r.Warnings),
	}
	for _, c := range r.Cycles {
		resp.CircularDependencies = append(resp.CircularDependencies, Cycle{Path: c})
	}
	resp.CriticalPath = append(resp.CriticalPath, r.CriticalPaths...)
	return resp
}
