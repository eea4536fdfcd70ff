// Package repository handles all interactions with Bigtable.
//
// It speaks in raw rows (a key plus its cells) and leaves decoding to the
// service layer, so nothing here knows about markets or odds variants.
package repository
