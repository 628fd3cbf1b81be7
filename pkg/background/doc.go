// Package background normalizes uploaded badge backgrounds and stores them.
//
// [Normalize] turns any decodable raster image (PNG, JPEG, GIF, BMP, TIFF,
// WebP) into an 88x31 PNG using nearest-neighbour resampling, which keeps
// pixel-art uploads crisp. [BlobStore] persists the result under a key derived
// from the counter id ([Key]); [FileBlobStore] is the on-disk implementation.
package background
