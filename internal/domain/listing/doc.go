// Package listing turns raw search parameters into a typed Filter and
// holds the pagination arithmetic shared by lost and found item searches.
//
// A Filter is store agnostic: each optional part (text, category, date
// range) is present only when the caller supplied it, and stores translate
// the present parts into their own query language.
package listing
