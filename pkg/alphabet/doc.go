// Package alphabet resolves characters to photographic letterform assets and
// loads them.
//
// # Asset Layout
//
// Each city ships a street alphabet laid out as:
//
//	assets/Alphabet/cities/<LOCATION>/alphabet/<LETTER>/<style>-<case>/<NN>.jpg
//
// where <style> is one of sans, serif, monospace, script, decorative, <case>
// is upper or lower, and <NN> runs from 01 to 05. [ResolvePath] is the only
// place that knows this naming convention.
//
// # Resolving and Loading
//
// A [Resolver] wraps a [Source] (a local directory via [FSSource] or a remote
// host via [HTTPSource]) and adds:
//
//   - [Resolver.ProbeExists]: best-effort existence check, never an error
//   - [Resolver.ListVariants]: the existing variants 01-05 of a character, in order
//   - [Resolver.LoadImage]: decode-once image cache with coalesced loads
//
// Loaded images live for the lifetime of the Resolver and are never evicted.
// Concurrent LoadImage calls for the same path share one underlying load.
//
//	r := alphabet.NewResolver(alphabet.NewFSSource(os.DirFS("./public")))
//	paths, err := r.ListVariants(ctx, 'A', "sans", "NYC")
//	img, err := r.LoadImage(ctx, paths[0])
//
// # Probe Cache
//
// By default every ListVariants call probes the source again. Passing a
// cache via [WithProbeCache] remembers probe results for a TTL, which helps
// when the source is a remote host.
package alphabet
