// Package language maps the language spellings users and media files carry
// (ISO 639-1 and 639-2 codes, English names, BCP 47 tags) to the two-letter
// codes the recognizer accepts, and back to display names.
package language
