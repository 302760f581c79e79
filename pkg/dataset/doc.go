// Package dataset checks that a dataset on disk matches the layout of its declared type.
//
// A dataset root must contain a "data" folder. When "data" has any of the "train", "eval" or "test"
// sub folders, each of them is checked, otherwise "data" itself is. Checks are structural only:
// they look at the names and kinds of the entries one level deep and never open files.
package dataset
