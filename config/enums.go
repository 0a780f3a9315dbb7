package config

//go:generate go tool go-enum --marshal --mustparse --nocase --names

// Order in which input files are listed and reported.
// ENUM(lexical, natural)
type ListingOrder string
