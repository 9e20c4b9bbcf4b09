// Package preflight provides readiness checks for the external tools and
// filesystem paths mkvaudur depends on.
//
// These checks run in two contexts:
//   - The export and display commands call CheckSystemDeps before touching
//     any file. A missing required tool stops the run.
//   - The CLI "mkvaudur deps" command uses RunAll and CheckSystemDeps to
//     display tool and directory health.
package preflight
