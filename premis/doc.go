/*
Package premis holds the provenance model for accessioned files.

A Record describes one file taken into the archive. It has two sections.
The administrative section carries the arrangement fields supplied with the
batch row and the serial number the file received inside its source
directory. The preservation section describes the object itself (identifier,
size, format, fixity, original name) and lists the events performed on it,
in the order they happened.

Events are only ever appended. Their order is the audit trail: an
identifier is assigned, a digest is computed, the file is replicated (or
migrated), renamed, its fixity checked, and finally it is accessioned.

Records are plain structs while they are being built. Only when a record is
written to the database is it converted, by a Codec, into a nested document
whose keys come from an external label dictionary and whose event type and
outcome terms come from a controlled vocabulary. Neither the labels nor the
vocabulary terms are hard coded here.
*/
package premis
