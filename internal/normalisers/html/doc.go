// Package html provides a Normaliser implementation for web pages.
// It extracts readable text, dropping scripts, styles and page chrome, and
// keeps a blank line between blocks so paragraph boundaries survive.
package html
