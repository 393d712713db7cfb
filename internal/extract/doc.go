// Package extract mirrors one release's type declarations out of the upstream
// distribution tarball.
//
// A Pipeline run moves through Resolving, Fetching, Unpacking, Validating and
// Writing before reaching Done; any failure lands in Failed. Each run owns a
// private workspace under the system temp directory which is removed on every
// exit path. The output directory is not protected: concurrent runs against
// the same directory must be serialized by the caller.
package extract
