package functions

import (
	"context"
	"sort"
	"strings"

	"colhash/codec"
	"colhash/core"
	"colhash/vectorized"
)

// Family groups operations the way the query front ends namespace them
type Family string

// Operation families
const (
	FamilyCrypto    Family = "chash"
	FamilyNonCrypto Family = "nchash"
	FamilyUUID      Family = "uuid"
	FamilyGeohash   Family = "geohash"
	FamilyH3        Family = "h3"
)

// Shape is the kind of column an operation returns
type Shape int

// Output shapes
const (
	ShapeColumn Shape = iota
	ShapeComposite
)

// String returns the string representation of a shape
func (s Shape) String() string {
	if s == ShapeComposite {
		return "composite"
	}
	return "column"
}

// Evaluator runs an operation over its argument columns, applying policy to
// null operands
type Evaluator func(args []*vectorized.Vector, cfg Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error)

// Descriptor describes one named operation. Descriptors are built once by
// NewRegistry and never modified.
type Descriptor struct {
	Name         string
	Family       Family
	Arity        int // columns of the full form, parameters included
	MinArgs      int
	MaxArgs      int
	Shape        Shape
	Policy       vectorized.NullPolicy // passed to Evaluator on every call
	InputKinds   []vectorized.DataType // accepted kinds of the first argument
	OutputType   vectorized.DataType
	OutputFields []string
	Kwargs       []string
	Description  string
	Deprecated   string // replacement name of a deprecated alias
	Evaluator    Evaluator
	schema       func(input *vectorized.Field) *vectorized.Field
}

// Registry resolves operation names to descriptors
type Registry struct {
	descriptors map[string]*Descriptor
}

// NewRegistry creates a registry holding every built-in operation
func NewRegistry() *Registry {
	r := &Registry{descriptors: make(map[string]*Descriptor)}
	r.registerCryptoFunctions()
	r.registerNonCryptoFunctions()
	r.registerUUIDFunctions()
	r.registerGeoFunctions()
	return r
}

func (r *Registry) register(d Descriptor) {
	if d.Arity == 0 {
		d.Arity = d.MaxArgs
	}
	r.descriptors[d.Name] = &d
}

// Lookup returns a descriptor by name (case-insensitive)
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.descriptors[strings.ToLower(name)]
	return d, ok
}

// List returns every descriptor ordered by family and name
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Invoke evaluates the named operation over args
func (r *Registry) Invoke(ctx context.Context, name string, args []*vectorized.Vector, cfg Config, opts ...Option) (*vectorized.Vector, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, vectorized.InvalidOperation("unknown operation: %s", name)
	}
	if err := d.checkArgs(len(args)); err != nil {
		return nil, err
	}

	tracer := core.GetTracer()
	tracer.Debug(core.TraceComponentRegistry, "Invoking operation",
		core.TraceContext("op", d.Name, "rows", args[0].Length, "policy", d.Policy.String(), "kwargs", cfg.String()))
	if d.Deprecated != "" {
		tracer.Warn(core.TraceComponentRegistry, "Deprecated operation",
			core.TraceContext("op", d.Name, "use", d.Deprecated))
	}

	callOpts := make([]Option, 0, len(opts)+1)
	callOpts = append(callOpts, vectorized.WithContext(ctx))
	callOpts = append(callOpts, opts...)

	out, err := d.Evaluator(args, cfg, d.Policy, callOpts)
	if err != nil {
		return nil, vectorized.WithOp(err, d.Name)
	}
	return out, nil
}

// OutputField declares the output field of the named operation for the given
// input fields without evaluating any row. The output keeps the name of the
// first input.
func (r *Registry) OutputField(name string, inputs []*vectorized.Field) (*vectorized.Field, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, vectorized.InvalidOperation("unknown operation: %s", name)
	}
	if err := d.checkArgs(len(inputs)); err != nil {
		return nil, err
	}
	if d.schema != nil {
		return d.schema(inputs[0]), nil
	}
	return &vectorized.Field{Name: inputs[0].Name, DataType: d.OutputType, Nullable: true}, nil
}

func (d *Descriptor) checkArgs(n int) error {
	if n < d.MinArgs {
		return vectorized.InvalidOperation("%s requires at least %d arguments, got %d", d.Name, d.MinArgs, n)
	}
	if n > d.MaxArgs {
		return vectorized.InvalidOperation("%s accepts at most %d arguments, got %d", d.Name, d.MaxArgs, n)
	}
	return nil
}

func (r *Registry) registerCryptoFunctions() {
	digests := []struct {
		name string
		fn   func(string) string
		desc string
	}{
		{"sha1", codec.Sha1, "SHA-1 digest as lowercase hex"},
		{"sha2_224", codec.Sha2_224, "SHA-224 digest as lowercase hex"},
		{"sha2_256", codec.Sha2_256, "SHA-256 digest as lowercase hex"},
		{"sha2_384", codec.Sha2_384, "SHA-384 digest as lowercase hex"},
		{"sha2_512", codec.Sha2_512, "SHA-512 digest as lowercase hex"},
		{"sha3_224", codec.Sha3_224, "SHA3-224 digest as lowercase hex"},
		{"sha3_256", codec.Sha3_256, "SHA3-256 digest as lowercase hex"},
		{"sha3_384", codec.Sha3_384, "SHA3-384 digest as lowercase hex"},
		{"sha3_512", codec.Sha3_512, "SHA3-512 digest as lowercase hex"},
	}
	for _, dg := range digests {
		fn := dg.fn
		r.register(Descriptor{
			Name:        dg.name,
			Family:      FamilyCrypto,
			MinArgs:     1,
			MaxArgs:     1,
			Policy:      vectorized.Propagate,
			InputKinds:  []vectorized.DataType{vectorized.STRING},
			OutputType:  vectorized.STRING,
			Description: dg.desc,
			Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
				return digest[string](args[0], fn, nil, policy, opts)
			},
		})
	}

	sha256 := *r.descriptors["sha2_256"]
	sha256.Name = "sha256"
	sha256.Deprecated = "sha2_256"
	r.register(sha256)

	r.register(Descriptor{
		Name:        "sha3_shake128",
		Family:      FamilyCrypto,
		MinArgs:     1,
		MaxArgs:     1,
		Policy:      vectorized.Propagate,
		InputKinds:  []vectorized.DataType{vectorized.STRING},
		OutputType:  vectorized.STRING,
		Kwargs:      []string{"length"},
		Description: "SHAKE128 output of {length} bytes as lowercase hex",
		Evaluator: func(args []*vectorized.Vector, cfg Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			length, err := cfg.lengthConfig()
			if err != nil {
				return nil, err
			}
			return shake128(args[0], length, policy, opts)
		},
	})

	binaryOrString := []vectorized.DataType{vectorized.STRING, vectorized.BINARY, vectorized.FIXED_BINARY}
	r.register(Descriptor{
		Name:        "blake3",
		Family:      FamilyCrypto,
		MinArgs:     1,
		MaxArgs:     1,
		Policy:      vectorized.Propagate,
		InputKinds:  binaryOrString,
		OutputType:  vectorized.STRING,
		Description: "BLAKE3-256 digest of text or bytes as lowercase hex",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return digest(args[0], codec.Blake3, codec.Blake3Bytes, policy, opts)
		},
	})
	r.register(Descriptor{
		Name:        "md5",
		Family:      FamilyCrypto,
		MinArgs:     1,
		MaxArgs:     1,
		Policy:      vectorized.Propagate,
		InputKinds:  binaryOrString,
		OutputType:  vectorized.STRING,
		Description: "MD5 digest of text or bytes as lowercase hex",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return digest(args[0], codec.Md5, codec.Md5Bytes, policy, opts)
		},
	})
}

func (r *Registry) registerNonCryptoFunctions() {
	r.register(Descriptor{
		Name:        "wyhash",
		Family:      FamilyNonCrypto,
		MinArgs:     1,
		MaxArgs:     1,
		Policy:      vectorized.Propagate,
		InputKinds:  []vectorized.DataType{vectorized.STRING, vectorized.BINARY, vectorized.FIXED_BINARY},
		OutputType:  vectorized.UINT64,
		Description: "wyhash of text or bytes with seed 0",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return digest(args[0], codec.WyhashString, codec.Wyhash, policy, opts)
		},
	})

	seeded := []struct {
		name   string
		fn     seededFn
		bits32 bool
		out    vectorized.DataType
		desc   string
	}{
		{"murmur32", murmur32, true, vectorized.UINT32, "MurmurHash3 x86 32-bit"},
		{"murmur128", murmur128, true, vectorized.BINARY, "MurmurHash3 x64 128-bit as 16 bytes"},
		{"xxhash32", xxhash32, true, vectorized.UINT32, "XXH32"},
		{"xxhash64", xxhash64, false, vectorized.UINT64, "XXH64"},
		{"xxh3_64", xxh3_64, false, vectorized.UINT64, "XXH3 64-bit"},
		{"xxh3_128", xxh3_128, false, vectorized.BINARY, "XXH3 128-bit as 16 bytes"},
	}
	for _, s := range seeded {
		s := s
		r.register(Descriptor{
			Name:        s.name,
			Family:      FamilyNonCrypto,
			MinArgs:     1,
			MaxArgs:     2,
			Policy:      vectorized.Propagate,
			InputKinds:  []vectorized.DataType{vectorized.STRING},
			OutputType:  s.out,
			Kwargs:      []string{"seed"},
			Description: s.desc + "; seed from {seed} or a second integer column",
			Evaluator: func(args []*vectorized.Vector, cfg Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
				if len(args) == 2 {
					seed, err := seedColumn(args[1], args[0].Length)
					if err != nil {
						return nil, err
					}
					return s.fn(args[0], seed, policy, opts)
				}
				seedCfg, err := cfg.seedConfig()
				if err != nil {
					return nil, err
				}
				if s.bits32 {
					if _, err := seedCfg.seed32(); err != nil {
						return nil, err
					}
				}
				return s.fn(args[0], vectorized.Broadcast("seed", seedCfg.Seed), policy, opts)
			},
		})
	}
}

func (r *Registry) registerUUIDFunctions() {
	uuid5 := func(namespace string) Evaluator {
		return func(args []*vectorized.Vector, cfg Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			uuidCfg, err := cfg.uuidConfig(namespace)
			if err != nil {
				return nil, err
			}
			return uuid5(args[0], uuidCfg, policy, opts)
		}
	}

	r.register(Descriptor{
		Name:        "uuid5",
		Family:      FamilyUUID,
		MinArgs:     1,
		MaxArgs:     1,
		Policy:      vectorized.Propagate,
		InputKinds:  []vectorized.DataType{vectorized.STRING},
		OutputType:  vectorized.STRING,
		Kwargs:      []string{"namespace"},
		Description: "version 5 UUID in {namespace}: dns, url, oid, x500 or a literal UUID",
		Evaluator:   uuid5(""),
	})
	for _, ns := range []string{"dns", "url", "oid", "x500"} {
		r.register(Descriptor{
			Name:        "uuid5_" + ns,
			Family:      FamilyUUID,
			MinArgs:     1,
			MaxArgs:     1,
			Policy:      vectorized.Propagate,
			InputKinds:  []vectorized.DataType{vectorized.STRING},
			OutputType:  vectorized.STRING,
			Description: "version 5 UUID in the " + ns + " namespace",
			Evaluator:   uuid5(ns),
		})
	}

	r.register(Descriptor{
		Name:        "uuid5_concat",
		Family:      FamilyUUID,
		MinArgs:     2,
		MaxArgs:     2,
		Policy:      vectorized.Propagate,
		InputKinds:  []vectorized.DataType{vectorized.STRING},
		OutputType:  vectorized.STRING,
		Kwargs:      []string{"namespace", "default"},
		Description: "version 5 UUID of the concatenation of two columns; {default} replaces a missing second value",
		Evaluator: func(args []*vectorized.Vector, cfg Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			uuidCfg, err := cfg.uuidConfig("")
			if err != nil {
				return nil, err
			}
			return uuid5Concat(args[0], args[1], uuidCfg, policy, opts)
		},
	})
}

func (r *Registry) registerGeoFunctions() {
	optionalParam := func(args []*vectorized.Vector) *vectorized.Vector {
		if len(args) > 1 {
			return args[1]
		}
		return nil
	}

	r.register(Descriptor{
		Name:        "ghash_encode",
		Family:      FamilyGeohash,
		MinArgs:     1,
		MaxArgs:     2,
		Policy:      vectorized.FailOnMissingOperand,
		InputKinds:  []vectorized.DataType{vectorized.STRUCT},
		OutputType:  vectorized.STRING,
		Description: "geohash of a latitude/longitude struct at an integer precision 1..12 (default 12)",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return geohashEncode(args[0], optionalParam(args), policy, opts)
		},
	})
	r.register(Descriptor{
		Name:         "ghash_decode",
		Family:       FamilyGeohash,
		MinArgs:      1,
		MaxArgs:      1,
		Shape:        ShapeComposite,
		Policy:       vectorized.Propagate,
		InputKinds:   []vectorized.DataType{vectorized.STRING},
		OutputType:   vectorized.STRUCT,
		OutputFields: vectorized.DecodeFields,
		Description:  "cell center of a geohash as a struct of longitude and latitude",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return geohashDecode(args[0], policy, opts)
		},
		schema: GeohashDecodeOutput,
	})
	r.register(Descriptor{
		Name:         "ghash_neighbors",
		Family:       FamilyGeohash,
		MinArgs:      1,
		MaxArgs:      1,
		Shape:        ShapeComposite,
		Policy:       vectorized.Propagate,
		InputKinds:   []vectorized.DataType{vectorized.STRING},
		OutputType:   vectorized.STRUCT,
		OutputFields: vectorized.NeighborFields,
		Description:  "the eight neighbor cells of a geohash as a struct n, ne, e, se, s, sw, w, nw",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return geohashNeighbors(args[0], policy, opts)
		},
		schema: GeohashNeighborsOutput,
	})
	r.register(Descriptor{
		Name:        "h3_encode",
		Family:      FamilyH3,
		MinArgs:     1,
		MaxArgs:     2,
		Policy:      vectorized.FailOnMissingOperand,
		InputKinds:  []vectorized.DataType{vectorized.STRUCT},
		OutputType:  vectorized.STRING,
		Description: "hex H3 cell of a latitude/longitude struct at a resolution 1..15 (default 12)",
		Evaluator: func(args []*vectorized.Vector, _ Config, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
			return h3Encode(args[0], optionalParam(args), policy, opts)
		},
	})
}
