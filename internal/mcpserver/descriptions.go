package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to interpret results.

func describeLocate() string {
	return `Locates a function declaration in Solidity source and returns its body and NatSpec docstring.

USE WHEN:
- Reviewing the implementation behind a specific function or signature
- Pulling the exact source of a function referenced by a clear-signing descriptor
- Checking what a verified contract actually does for a given entry point
- Extracting NatSpec documentation for display or audit

INTERPRETING RESULTS:
- found=false means no concrete declaration exists; interfaces and abstract
  prototypes do not count as declarations
- When several declarations share a name and no parameter names are given,
  the last declaration in source order wins (overrides shadow base contracts)
- signature input matches by canonical parameter types after normalization
- The docstring is the comment block immediately above the declaration,
  either /// lines or a /** */ block

RETURNED:
- found: whether a declaration was located
- body: declaration header plus balanced-brace body text
- docstring: NatSpec comment above the declaration, empty if none

Accepts plain .sol files and verified-source payloads (Etherscan standard
JSON, Sourcify sources maps).`
}

func describeListFunctions() string {
	return `Lists every function definition in a source bundle with visibility and line ranges.

USE WHEN:
- Building an inventory of a contract's entry points
- Getting oriented in an unfamiliar verified contract
- Cross-checking descriptor coverage against what the contract defines
- Finding internal helpers that external functions delegate to

INTERPRETING RESULTS:
- Functions appear in source order, grouped per file
- visibility external/public are callable entry points; internal/private
  are implementation details
- Interface and abstract prototypes (no body) are skipped
- Vyper files are detected automatically and listed with def-style
  declarations

RETURNED:
- Per-file: function list with name, params, visibility, body,
  docstring, start/end lines
- total: count across the whole bundle`
}

func describeDeriveSelector() string {
	return `Normalizes function signatures and derives their 4-byte keccak256 selectors.

USE WHEN:
- Mapping descriptor format keys to on-chain selectors
- Verifying a selector claimed in documentation or a descriptor
- Resolving human-readable signatures (with parameter names, aliases like
  uint) to canonical form

INTERPRETING RESULTS:
- Keys that already are 0x-prefixed 4-byte selectors pass through lowercased
- Signatures are normalized first: parameter names dropped, uint/int
  expanded to uint256/int256, custom types substituted via the types map
- selector is the first 4 bytes of keccak256 over the normalized signature
- Keys that cannot be parsed carry an error field instead of a selector

RETURNED:
- Per-key: normalized signature (when derived from a signature), selector,
  or error`
}

func describeLookupSelector() string {
	return `Finds the ABI function entry matching a 4-byte selector.

USE WHEN:
- Decoding unknown calldata selectors against a known ABI
- Confirming which function a descriptor format key targets
- Recovering parameter names for a selector seen on-chain

INTERPRETING RESULTS:
- Matching is case insensitive; selectors are compared lowercased
- found=false means the ABI defines no function with that selector;
  this is a normal outcome, not an error
- When an ABI lists duplicate signatures, the first entry wins
- Tuples are flattened to their component types for signature hashing

RETURNED:
- found: whether a function entry matched
- match: name, parameter names, internal types, canonical signature,
  selector`
}

func describeMergeABIs() string {
	return `Merges ABI fragments from multiple files into one deduplicated ABI.

USE WHEN:
- Combining proxy and implementation ABIs for a delegatecall setup
- Assembling a complete ABI from per-facet fragments (diamonds)
- Folding library ABIs into the calling contract's ABI

INTERPRETING RESULTS:
- Entries are keyed by canonical signature; the first occurrence wins
- Output order: constructor, functions sorted by name, events sorted by
  name, then fallback/receive
- duplicate_functions counts signatures seen more than once across inputs

RETURNED:
- abi: the merged entry list
- stats: new_functions, new_events, duplicate_functions`
}
