package mcpserver

// ManifestFormat describes the portable library manifest for LLM consumers
// that read or produce manifests.
const ManifestFormat = `# Library Manifest Format

A manifest is a single JSON object describing the structure of a reading
library without any absolute paths, so it can be handed to another machine.

## Structure

` + "```" + `json
{
  "schema": "reader-library-manifest",
  "version": 1,
  "exportedAt": "2026-03-01T12:00:00Z",
  "sources": [
    { "name": "Fiction", "rootName": "fiction" }
  ],
  "entries": [
    {
      "sourceName": "Fiction",
      "relativePath": "dune/dune.epub",
      "type": "epub",
      "normalizedTextRelativePath": "dune/dune.txt",
      "size": 1048576,
      "modifiedAt": 1767225600000
    }
  ]
}
` + "```" + `

## Rules

1. ` + "`" + `schema` + "`" + ` and ` + "`" + `version` + "`" + ` must match exactly or the import is rejected.
2. ` + "`" + `rootName` + "`" + ` is the last folder name of the source on the exporting machine.
   On import it is looked up directly under the chosen shared root.
3. Every entry's ` + "`" + `sourceName` + "`" + ` must name a declared source.
4. ` + "`" + `relativePath` + "`" + ` is relative to the source root, uses forward slashes and
   never contains ` + "`" + `..` + "`" + `.
5. ` + "`" + `type` + "`" + ` is one of ` + "`" + `pdf` + "`" + `, ` + "`" + `epub` + "`" + `, ` + "`" + `txt` + "`" + `.
6. ` + "`" + `normalizedTextRelativePath` + "`" + ` is present for txt entries and for pdf/epub
   entries that have a sibling .txt snapshot.
7. ` + "`" + `modifiedAt` + "`" + ` is milliseconds since the Unix epoch.

## Import outcomes

- ` + "`" + `added` + "`" + `: the folder was found, at least one listed file exists, and it was registered.
- ` + "`" + `existing` + "`" + `: the folder is already registered.
- ` + "`" + `missing` + "`" + `: no folder named rootName under the shared root, or none of the
  listed files exist in it. A manifest with a single source falls back to the
  shared root itself.
`
