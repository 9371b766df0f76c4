// File: internal/diagnosis/signatures.go
package diagnosis

import "regexp"

// defaultSignatures is the built-in failure taxonomy for Android kernel
// builds. Declaration order is the match priority: narrow shapes sit above
// the generic entries that would otherwise shadow them, and the catch-all
// make and linker entries come last.
var defaultSignatures = []Signature{
	// Source tree problems.
	{
		Pattern:  regexp.MustCompile(`<<<<<<< |>>>>>>> `),
		Category: "Unresolved Merge Conflict",
		Advice: "The tree still contains git conflict markers. Resolve the conflicted " +
			"hunks and commit before building.",
	},

	// Toolchain and option mismatches.
	{
		Pattern:  regexp.MustCompile(`(?i)unrecognized command.line option|unknown argument`),
		Category: "Compiler Option Not Supported",
		Advice: "The compiler does not understand a flag it was given. The toolchain is " +
			"older or newer than the Makefile expects; align the clang/gcc version with " +
			"the manifest or drop the flag from KCFLAGS.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)undefined reference to|undefined symbol:`),
		Category: "Link Error: Missing Library or Function",
		Advice: "The linker found a use of a symbol with no definition. Confirm the " +
			"object or library that provides it is part of the link, and that no patch " +
			"removed or renamed the definition.",
	},

	// Host packages, before the generic missing-header entry so the
	// specific fix wins.
	{
		Pattern:  regexp.MustCompile(`(?i)fatal error: ['"]?openssl/`),
		Category: "Missing OpenSSL Headers",
		Advice: "Module signing and some host tools need the OpenSSL development " +
			"headers. Install libssl-dev (or openssl-devel) on the build host.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)fatal error: ['"]?(gelf|libelf)\.h`),
		Category: "Missing libelf Headers",
		Advice: "objtool and BTF generation need libelf. Install libelf-dev (or " +
			"elfutils-libelf-devel) on the build host.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)command not found`),
		Category: "Missing Host Tool",
		Advice: "A program the build shells out to is not installed on the runner. " +
			"Install the missing package; bc, bison, flex, lz4 and cpio are the usual " +
			"suspects.",
	},

	// Kbuild configuration.
	{
		Pattern:  regexp.MustCompile(`(?i)can't find default configuration`),
		Category: "Missing Defconfig",
		Advice: "make could not locate the named defconfig under arch/*/configs. Check " +
			"the defconfig name for typos and that the file actually exists in this " +
			"source tree.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)recursive dependency detected`),
		Category: "Kconfig Recursive Dependency",
		Advice: "Kconfig found a dependency cycle. Inspect the named symbols' " +
			"depends on/select chains and break the loop.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)no rule to make target`),
		Category: "Makefile Target Missing",
		Advice: "A prerequisite named in a Makefile does not exist. Usually a file was " +
			"removed or renamed by a patch while a Makefile still references it.",
	},

	// Compiler diagnoses that point at mis-ported patches.
	{
		Pattern:  regexp.MustCompile(`(?i)implicit declaration of function|call to undeclared function`),
		Category: "Undeclared Function",
		Advice: "A function is called before any declaration is seen. Usually a missing " +
			"include, or a patch written for a kernel version where the function still " +
			"existed.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)use of undeclared identifier|undeclared \(first use`),
		Category: "Undeclared Identifier",
		Advice: "An identifier is not declared in this scope. Often a config-gated " +
			"symbol whose CONFIG option is off, or an API renamed between kernel " +
			"versions.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)has no member named`),
		Category: "Struct Member Mismatch",
		Advice: "The code accesses a struct field this kernel version does not have. " +
			"The patch targets a different version; adapt the field access to the " +
			"in-tree struct layout.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)too (many|few) arguments to`),
		Category: "Function Signature Mismatch",
		Advice: "A call site and the prototype disagree on arity. The API changed " +
			"between kernel versions; update the call to the in-tree signature.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)conflicting types for`),
		Category: "Conflicting Declaration",
		Advice: "Two declarations of the same symbol disagree. A backported prototype " +
			"probably clashes with the in-tree one; reconcile the declarations.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)redefinition of`),
		Category: "Duplicate Definition",
		Advice: "The same symbol is defined twice, typically after a patch added " +
			"something the tree already has. Drop the duplicate definition.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)unknown type name`),
		Category: "Unknown Type Name",
		Advice: "A type is used that this tree never declares. Add the missing include " +
			"or backport the type definition it relies on.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)incompatible [^\n]*type`),
		Category: "Type Mismatch",
		Advice: "Two types that must agree do not. Check the structures involved for " +
			"changes between kernel versions and adjust casts or prototypes.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)unterminated (conditional directive|#if)`),
		Category: "Unbalanced Preprocessor Conditional",
		Advice: "An #if/#ifdef block never closes. A patch probably added or removed an " +
			"#endif; rebalance the conditionals in the named file.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)error: expected `),
		Category: "C Syntax Error",
		Advice: "The compiler could not parse the source. Usually a malformed patch " +
			"hunk or a stray character at the file and line in the message.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)stack frame size [^\n]* exceeds|frame size of [^\n]* exceeds`),
		Category: "Stack Frame Too Large",
		Advice: "A function's stack frame exceeds the kernel limit. Large on-stack " +
			"arrays are the usual cause; allocate them dynamically instead.",
	},
	{
		Pattern:  regexp.MustCompile(`\[-Werror`),
		Category: "Warning Promoted to Error",
		Advice: "This tree builds with warnings as errors. Fix the warning in the " +
			"source, or relax the specific -Werror= option if the code is known good.",
	},

	// Toolchain and environment failures.
	{
		Pattern:  regexp.MustCompile(`(?i)internal compiler error`),
		Category: "Internal Compiler Error",
		Advice: "The compiler itself crashed. Retry the build first; if it repeats, " +
			"switch toolchain versions and report the crash upstream.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)virtual memory exhausted|out of memory|cannot allocate memory|killed signal terminated program`),
		Category: "Out of Memory",
		Advice: "The build exhausted RAM, commonly during LTO or debug-heavy links. " +
			"Lower the parallel job count or give the runner more memory.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)no space left on device`),
		Category: "Disk Full",
		Advice: "The runner's disk filled up. Clear the output and ccache directories " +
			"or enlarge the disk.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)clock skew detected|modification time [^\n]* in the future`),
		Category: "Clock Skew",
		Advice: "File timestamps are ahead of the runner clock, which can loop make " +
			"forever. Sync the clock, touch the tree, and rebuild.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)exec format error`),
		Category: "Wrong Binary Architecture",
		Advice: "A tool was built for a different CPU architecture than the runner. " +
			"Usually a host/target toolchain mix-up; check which binaries PATH picks up.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)permission denied`),
		Category: "Permission Denied",
		Advice: "The build may not read or write a path it needs. Check ownership of " +
			"the workspace and output directories on the runner.",
	},

	// Link and image layout.
	{
		Pattern:  regexp.MustCompile(`(?i)relocation truncated to fit`),
		Category: "Relocation Overflow",
		Advice: "A branch or reference no longer reaches its target, usually because " +
			"the image grew too large. Trim enabled features or rework the layout.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)overlaps section|region [^\n]* overflowed|will not fit in region`),
		Category: "Image Size Overflow",
		Advice: "The linked image exceeds a fixed memory region. Disable features or " +
			"raise the region size in the linker script if the hardware allows it.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)multiple definition of`),
		Category: "Duplicate Symbol",
		Advice: "Two objects define the same symbol. A patch likely duplicated a " +
			"function; keep a single definition or mark one static.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)cannot find -l`),
		Category: "Missing Library",
		Advice: "The linker cannot find a library requested with -l. Install its " +
			"development package on the host or fix the library search path.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)modpost:[^\n]*undefined`),
		Category: "Module Symbol Missing",
		Advice: "A module references a symbol the kernel image does not export. Enable " +
			"the providing CONFIG option or add the missing EXPORT_SYMBOL.",
	},

	// Device tree.
	{
		Pattern:  regexp.MustCompile(`(?i)unable to parse input tree|\.dtsi?\b[^\n]*syntax error`),
		Category: "Device Tree Parse Error",
		Advice: "dtc rejected the device tree sources. Check recent .dts and .dtsi " +
			"edits for missing semicolons or braces.",
	},

	// Generic fallbacks, deliberately near the end.
	{
		Pattern:  regexp.MustCompile(`(?i)fatal error: [^\n]*(no such file or directory|file not found)`),
		Category: "Missing Header File",
		Advice: "An #include does not resolve. Check that the header exists in the " +
			"tree, that a patch adding it was fully applied, and that the include " +
			"paths are right.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)no such file or directory`),
		Category: "Missing File or Directory",
		Advice: "A path the build needs does not exist. Look for files a patch should " +
			"have added and for typos in paths handed to the build.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\bld(\.lld)?:[^\n]*error`),
		Category: "Linker Error",
		Advice: "The link step failed. The linker message names the objects involved; " +
			"start with the most recently changed one.",
	},
	{
		Pattern:  regexp.MustCompile(`(?i) fatal error:`),
		Category: "Compiler Fatal Error",
		Advice: "The compiler stopped on a fatal condition. The file and line in the " +
			"quoted message point at the faulty source.",
	},
	{
		Pattern:  regexp.MustCompile(`make(\[\d+\])?: \*\*\*`),
		Category: "Build Step Failed",
		Advice: "A sub-make aborted. The root cause is usually a few lines above this " +
			"point in the full log.",
	},
}

var defaultTable = NewTable(defaultSignatures...)

// DefaultTable returns the signature table compiled into the binary.
func DefaultTable() Table {
	return defaultTable
}
