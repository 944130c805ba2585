package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// ProjectFile is the on-disk form of one project.
type ProjectFile struct {
	Project schedule.Project `json:"project"`
	Tasks   []schedule.Task  `json:"tasks"`
}

// ReadJSON decodes a project file from r.
//
// ReadJSON returns an error if the JSON is malformed, a date is not in
// YYYY-MM-DD form, or the project ID is missing or unsafe. Tasks without a
// project_id are assigned to the file's project. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*ProjectFile, error) {
	var pf ProjectFile
	if err := json.NewDecoder(r).Decode(&pf); err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInvalidInput, err, "decode project file")
	}
	if err := cperrors.ValidateProjectID(pf.Project.ID); err != nil {
		return nil, err
	}
	for i := range pf.Tasks {
		if pf.Tasks[i].ProjectID == "" {
			pf.Tasks[i].ProjectID = pf.Project.ID
		}
	}
	return &pf, nil
}

// ImportJSON reads the project file at path.
func ImportJSON(path string) (*ProjectFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pf, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}
