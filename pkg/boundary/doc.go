// Package boundary splits generated source artifacts into a regenerable
// region and a preserved region, and merges them on each regeneration.
//
// An artifact is one text file divided by a single comment block:
//
//	# ************* End of generated code ***********
//	# DO NOT EDIT THIS COMMENT BLOCK!
//	#
//	# Code below this comment block will be preserved
//	# if the code for this class is re-generated.
//	# ***********************************************
//
// Everything above the block is owned by the generator and replaced on
// every pass. Everything below it belongs to the author and is carried
// over byte-for-byte. The comment prefix follows the target language
// ("#" or "//"); the six lines after the prefix never change.
//
// A previous artifact with no block, or with more than one, is rejected
// with a *MalformedError. It is never repaired, because guessing where
// hand-written code starts can destroy it.
//
// # Usage
//
//	prev := string(oldFile)
//	out, err := boundary.Merge(boundary.Python, generated, &prev)
//	if errors.Is(err, boundary.ErrMalformed) {
//	    // leave the file alone and report
//	}
package boundary
