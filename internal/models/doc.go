// Package models defines the unified catalog model every provider is normalized into.
//
// The package contains three groups of declarations:
//
//  1. Entities built fresh for each request and owned by the caller
//     - [Track] : one song with artist/album references and its source URLs
//     - [PlaylistSummary] : listing entry without tracks
//     - [Playlist] : summary plus the ordered tracks resolved by the detail pipeline
//     - [PagedResult] : one page of items with the provider-reported pagination fields
//
//  2. The identity namespace: [Provider], [Kind] and [ID] map a native id into a
//     string that cannot collide across providers or entity kinds.
//
//  3. Normalization rules shared by every provider mapping: [OrPlaceholder] for
//     missing upstream fields and [ResizeImage] for size-templated cover URLs.
package models
