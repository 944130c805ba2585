// Package io provides JSON import and export for project files.
//
// # Overview
//
// A project file holds one project's anchor dates and its task list. The
// CLI reads project files directly and the file storage backend keeps one
// per project, so the same format serves as input, output and storage.
//
// # JSON Format
//
//	{
//	  "project": {
//	    "id": "site-7",
//	    "start_date": "2025-01-01",
//	    "target_completion": "2025-03-01"
//	  },
//	  "tasks": [
//	    {"id": "excavate", "duration": 5, "start_date": "2025-01-01"},
//	    {
//	      "id": "pour",
//	      "duration": 3,
//	      "predecessor_configs": [
//	        {"predecessor_id": "excavate", "type": "FS", "lag_days": 0}
//	      ]
//	    }
//	  ]
//	}
//
// Dates use the YYYY-MM-DD form. An omitted or null date is unset. An
// omitted dependency type means FS. Tasks without a project_id belong to
// the file's project.
//
// # Import
//
// Use [ImportJSON] to read a file path, or [ReadJSON] to read from any
// io.Reader. Only the document shape is checked here; task records are
// validated when the dependency graph is built.
//
// # Export
//
// [ExportJSON] writes to a temporary file in the target directory and
// renames it into place, so a reader never observes a half-written file.
package io
