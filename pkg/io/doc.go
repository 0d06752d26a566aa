// Package io reads and writes scatter's on-disk formats: stamp pools and
// composition files.
//
// # Stamp Pools
//
// A stamp pool is a JSON file listing vector stamps extracted from bitmaps:
//
//	{
//	  "stamps": [
//	    {"path": "M0 0h4v2h-4Z", "width": 4, "height": 2, "resolution": 4}
//	  ]
//	}
//
// A bare array of stamps is accepted as well. Every stamp needs a path and
// positive dimensions; [ReadStamps] reports the first one that does not.
// Pools are produced by `scatter stamp` and consumed through the generator's
// stamps option.
//
// # Composition Files
//
// A composition can be loaded from either of its two serialized forms:
//
//   - a rendered SVG carrying embedded state (see package codec)
//   - the JSON document written by the json output format
//
// [ReadComposition] sniffs which one it was given. [ExportComposition]
// picks the output form from the file extension.
//
// # Writing Files
//
// [WriteFile] writes through a temporary file and renames it into place, so
// readers never observe a half-written document.
package io
