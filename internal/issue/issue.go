// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a known failure situation with a remediation guide.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ManifestUnreachableId
	DownloadCorruptId
	PermissionDeniedId
	ScriptDirMissingId
	BackupMissingId
)

// MarkdownMsg is markdown text rendered to the terminal via glamour.
type MarkdownMsg string

// Issue is a catalog entry: a markdown remediation guide for one failure
// situation.
type Issue struct {
	id    Id
	mdMsg MarkdownMsg
}

// Render renders the issue's markdown guide with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

// Id returns the issue's identifier.
func (i *Issue) Id() Id {
	return i.id
}

// render is a seam for tests; glamour pulls in terminal detection that is
// awkward in CI.
var render = glamour.Render

var (
	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Could not load your configuration

scriptup reads its settings from a TOML config file.

## Things you can try
- Create a starter config:
~~~
$ scriptup init
~~~
- Check where scriptup looks for the file:
~~~
$ scriptup config path
~~~
- Verify the file is valid TOML (quotes around strings, one key per line).`,
	}

	manifestUnreachableIssue = &Issue{
		id: ManifestUnreachableId,
		mdMsg: `
# The version manifest could not be fetched

The configured manifest URL did not answer with a usable version list.

## Things you can try
- Confirm the URL in your config points at the published JSON manifest:
~~~
$ scriptup config show
~~~
- Check your network connection and any proxy settings.
- If the server is temporarily down, retry later — the previous check
  results stay cached and nothing was lost.`,
	}

	downloadCorruptIssue = &Issue{
		id: DownloadCorruptId,
		mdMsg: `
# The downloaded update could not be unpacked

The archive for the selected version was fetched but failed to extract.

## Things you can try
- Retry the upgrade; the download may have been truncated:
~~~
$ scriptup upgrade
~~~
- Your installed version was not touched. No recovery is needed.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied while replacing script files

scriptup could not rename the script directory.

## Things you can try
- Check the ownership and permissions of the script directory and its parent.
- Re-run with the user that owns the installation.`,
	}

	scriptDirMissingIssue = &Issue{
		id: ScriptDirMissingId,
		mdMsg: `
# The managed script directory does not exist

The configured script_dir was not found on disk.

## Things you can try
- Verify script_dir in your config:
~~~
$ scriptup config show
~~~
- If an upgrade was interrupted, the previous version may still be at the
  backup path; restore it:
~~~
$ scriptup rollback
~~~`,
	}

	backupMissingIssue = &Issue{
		id: BackupMissingId,
		mdMsg: `
# No backup available to roll back to

Rollback restores the backup created during the last upgrade, but no backup
directory exists. Either no upgrade ran yet, or cleanup already removed it.

## Things you can try
- Re-install the wanted version instead:
~~~
$ scriptup upgrade <version>
~~~`,
	}

	catalog = map[Id]*Issue{
		ConfigLoadFailedId:    configLoadFailedIssue,
		ManifestUnreachableId: manifestUnreachableIssue,
		DownloadCorruptId:     downloadCorruptIssue,
		PermissionDeniedId:    permissionDeniedIssue,
		ScriptDirMissingId:    scriptDirMissingIssue,
		BackupMissingId:       backupMissingIssue,
	}
)

// Lookup returns the catalog entry for id, or nil when none exists.
func Lookup(id Id) *Issue {
	return catalog[id]
}

// Ids returns all known issue ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(catalog)
	slices.Sort(ids)
	return ids
}
