// Package source provides backing stores for the fast-track intake template.
//
// A template source loads the intake template the gate checks submissions
// against and watches the store for changes so a running service picks up
// template updates without a restart. Two sources are provided:
//
//   - FileSource reads a local YAML file and watches it with fsnotify.
//     Suited to development and single-host deployments.
//
//   - GitSource clones a Git repository and polls the remote. Template
//     changes arrive as commits, which gives deployments review, history,
//     and rollback of the intake form itself. A template that fails to
//     parse after a pull triggers a rollback to the last commit that
//     loaded successfully.
//
// Sources are constructed from configuration with New and consumed through
// the TemplateSource interface.
package source
