// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/log"

	"github.com/schl3ck/scriptup/internal/issue"
)

// issueHelp renders the catalog remediation guide for id. Rendering is
// best-effort: an unknown id or a renderer failure yields "" and the caller
// falls back to the bare error text.
func issueHelp(id issue.Id) string {
	entry := issue.Lookup(id)
	if entry == nil {
		return ""
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		log.Warn("could not render remediation guide", "issue", int(id), "err", err)
		return ""
	}
	return rendered
}

// withIssueHelp appends the remediation guide for id to msg.
func withIssueHelp(msg string, id issue.Id) string {
	if help := issueHelp(id); help != "" {
		return msg + "\n" + help
	}
	return msg
}
