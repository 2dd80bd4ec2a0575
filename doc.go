// Package heritage is the backend for a community cultural-heritage
// platform: a catalog of cultural items with media, tags, comments,
// blog posts, events and user contributions, protected by an opaque
// bearer-token authentication layer backed by the database.
package heritage
