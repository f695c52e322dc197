package taxonomy

// Subject is one entry of the fixed 13-subject taxonomy.
type Subject struct {
	Label string
	Slug  string
}

const (
	SubjectUnknown     = "Unknown"
	SubjectUnknownSlug = "unknown"

	GeneralAptitude = "General Aptitude"
)

// Subjects is the canonical subject enum, alphabetical by label.
var Subjects = []Subject{
	{Label: "Algorithms", Slug: "algorithms"},
	{Label: "CO & Architecture", Slug: "co-and-architecture"},
	{Label: "Compiler Design", Slug: "compiler-design"},
	{Label: "Computer Networks", Slug: "computer-networks"},
	{Label: "Databases", Slug: "databases"},
	{Label: "Digital Logic", Slug: "digital-logic"},
	{Label: "Discrete Mathematics", Slug: "discrete-mathematics"},
	{Label: "Engineering Mathematics", Slug: "engineering-mathematics"},
	{Label: GeneralAptitude, Slug: "general-aptitude"},
	{Label: "Operating System", Slug: "operating-system"},
	{Label: "Programming and DS", Slug: "programming-and-ds"},
	{Label: "Programming in C", Slug: "programming-in-c"},
	{Label: "Theory of Computation", Slug: "theory-of-computation"},
}

// SubjectPriority is the hand-curated tie-break order used when several
// subjects remain tied after match-position and subtopic-count ranking.
// It encodes disambiguation confidence (narrow, rarely-polluted subjects
// first; the broad math sections last, since their subtopic vocabularies
// leak into every section). Encoded policy; do not re-derive, reordering
// silently changes classification outcomes.
var SubjectPriority = []string{
	GeneralAptitude,
	"Digital Logic",
	"CO & Architecture",
	"Theory of Computation",
	"Compiler Design",
	"Computer Networks",
	"Databases",
	"Operating System",
	"Programming in C",
	"Programming and DS",
	"Algorithms",
	"Discrete Mathematics",
	"Engineering Mathematics",
}

// subjectAliasOverrides lists the explicit-name tag spellings seen in the
// scraped data, beyond the label and slug themselves.
var subjectAliasOverrides = map[string][]string{
	"Algorithms":              {"algorithms"},
	"CO & Architecture":       {"co-and-architecture", "computer-organization-and-architecture", "computer-architecture", "coa"},
	"Compiler Design":         {"compiler-design"},
	"Computer Networks":       {"computer-networks", "cn"},
	"Databases":               {"databases", "dbms", "database-management-systems"},
	"Digital Logic":           {"digital-logic"},
	"Discrete Mathematics":    {"discrete-mathematics", "discrete-math"},
	"Engineering Mathematics": {"engineering-mathematics", "engg-math"},
	GeneralAptitude:           {"general-aptitude", "ga"},
	"Operating System":        {"operating-system", "os"},
	"Programming and DS":      {"programming-and-ds", "programming-ds", "prog-ds"},
	"Programming in C":        {"programming-in-c", "c-programming", "prog-c"},
	"Theory of Computation":   {"theory-of-computation", "toc"},
}

// topicHierarchy is the curated subject → subtopic vocabulary. Labels are
// the display forms; matching always goes through NormalizeToken.
var topicHierarchy = map[string][]string{
	"Discrete Mathematics": {
		"Combinatory", "Balls In Bins", "Counting", "Generating Functions", "Modular Arithmetic",
		"Pigeonhole Principle", "Recurrence Relation", "Summation", "Degree of Graph", "Graph Coloring",
		"Graph Connectivity", "Graph Isomorphism", "Graph Matching", "Graph Planarity", "First Order Logic",
		"Logical Reasoning", "Propositional Logic", "Binary Operation", "Countable Uncountable Set",
		"Functions", "Group Theory", "Identify Function", "Lattice", "Mathematical Induction",
		"Number Theory", "Onto", "Partial Order", "Polynomials", "Relations", "Set Theory",
	},
	"Engineering Mathematics": {
		"Calculus", "Continuity", "Definite Integral", "Differentiation", "Integration", "Limits",
		"Maxima Minima", "Polynomials", "Linear Algebra", "Cartesian Coordinates", "Determinant",
		"Eigen Value", "Gaussian Elimination", "Lu Decomposition", "Matrix", "Orthonormality",
		"Rank of Matrix", "Singular Value Decomposition", "Subspace", "System of Equations", "Vector Space",
		"Probability", "Bayes Theorem", "Bayesian Network", "Bernoulli Distribution", "Binomial Distribution",
		"Conditional Probability", "Continuous Distribution", "Expectation", "Exponential Distribution",
		"Independent Events", "Normal Distribution", "Poisson Distribution", "Probability Density Function",
		"Probability Distribution", "Random Variable", "Square Invariant", "Statistics", "Uniform Distribution",
		"Variance",
	},
	GeneralAptitude: {
		"Analytical Aptitude", "Age Relation", "Code Words", "Coding Decoding", "Counting Figure",
		"Direction Sense", "Family Relationship", "Inequality", "Logical Inference", "Logical Reasoning",
		"Number Relations", "Odd One", "Passage Reading", "Round Table Arrangement", "Seating Arrangement",
		"Sequence Series", "Statements Follow", "Quantitative Aptitude", "Absolute Value", "Algebra",
		"Alligation Mixture", "Area", "Arithmetic Series", "Average", "Bar Graph", "Calendar",
		"Cartesian Coordinates", "Circle", "Clock Time", "Combinatory", "Compound Interest",
		"Conditional Probability", "Cones", "Contour Plots", "Cost Market Price", "Counting", "Cube",
		"Currency Notes", "Curves", "Data Interpretation", "Digital Image Processing", "Factors",
		"Fractions", "Functions", "Geometry", "Graph Coloring", "LCM HCF", "Line Graph",
		"Lines", "Logarithms", "Maps", "Maxima Minima", "Mensuration", "Modular Arithmetic", "Number Series",
		"Number System", "Number Theory", "Numerical Computation", "Percentage", "Permutation and Combination",
		"Pie Chart", "Polynomials", "Powers", "Prime Numbers", "Probability", "Probability Density Function",
		"Profit Loss", "Quadratic Equations", "Radar Chart", "Ratio Proportion", "Scatter Plot",
		"Set Theory", "Speed Time Distance", "Squares", "Statistics",
		"System of Equations", "Tables", "Tabular Data", "Triangles", "Trigonometry", "Unit Digit",
		"Venn Diagram", "Volume", "Work Time", "Spatial Aptitude", "Assembling Pieces",
		"Grouping", "Image Rotation", "Mirror Image", "Paper Folding", "Patterns In Three Dimensions",
		"Patterns In Two Dimensions", "Verbal Aptitude", "Articles", "Comparative Forms", "English Grammar",
		"Grammatical Error", "Incorrect Sentence Part", "Most Appropriate Word", "Narrative Sequencing",
		"Noun Verb Adjective", "Opposite", "Phrasal Verb", "Phrase Meaning",
		"Prepositions", "Pronouns", "Sentence Ordering", "Statement Sufficiency",
		"Synonyms", "Tenses", "Verbal Reasoning", "Word Meaning", "Word Pairs",
	},
	"Algorithms": {
		"Algorithm Design", "Algorithm Design Technique", "Asymptotic Notation", "Asymptotic Notations",
		"Bellman Ford", "Binary Search", "Bitonic Array", "Depth First Search", "Dijkstras Algorithm",
		"Directed Graph", "Double Hashing", "Dynamic Programming", "Graph Algorithms", "Graph Search",
		"Greedy Algorithms", "Hashing", "Huffman Code", "Identify Function", "Insertion Sort",
		"Linear Probing", "Matrix Chain Ordering", "Merge Sort", "Merging", "Minimum Spanning Tree",
		"Prims Algorithm", "Quick Sort", "Recurrence Relation", "Recursion", "Searching", "Shortest Path",
		"Sorting", "Space Complexity", "Strongly Connected Components", "Time Complexity", "Topological Sort",
	},
	"CO & Architecture": {
		"Addressing Modes", "Average Memory Access Time", "CISC RISC Architecture", "Cache Memory",
		"Clock Cycles", "DMA", "Data Dependency", "Data Path", "IO Handling", "Instruction Execution",
		"Instruction Format", "Instruction Set Architecture", "Interrupts", "Machine Instruction",
		"Memory Interfacing", "Microprogramming", "Pipelining", "Runtime Environment", "Speedup", "Virtual Memory",
	},
	"Compiler Design": {
		"Assembler", "Backpatching", "Basic Blocks", "Code Optimization", "Compilation Phases",
		"Expression Evaluation", "First and Follow", "Grammar", "Intermediate Code", "LR Parser",
		"Lexical Analysis", "Linker", "Live Variable Analysis", "Macros", "Operator Precedence",
		"Parameter Passing", "Parsing", "Register Allocation", "Runtime Environment", "Static Single Assignment",
		"Symbol Table", "Syntax Directed Translation", "Variable Scope",
	},
	"Computer Networks": {
		"Application Layer Protocols", "Arp", "Bit Stuffing", "Bridges", "CRC Polynomial", "CSMA CD",
		"Channel Utilization", "Communication", "Congestion Control", "Distance Vector Routing",
		"Error Detection", "Ethernet", "Fragmentation", "IP Addressing", "IP Packet", "LAN Technologies",
		"MAC Protocol", "Network Flow", "Network Layering", "Network Protocols", "Network Switching",
		"Osi Model", "Probability", "Routing", "Routing Protocols", "Sliding Window", "Sockets",
		"Stop and Wait", "Subnetting", "TCP", "Token Bucket", "UDP",
	},
	"Databases": {
		"B Tree", "Candidate Key", "Conflict Serializable", "Database Design", "Database Normalization",
		"Decomposition", "ER Diagram", "Functional Dependency", "Indexing", "Joins", "Multivalued Dependency 4nf",
		"Natural Join", "Query", "Referential Integrity", "Relational Algebra", "Relational Calculus",
		"Relational Model", "SQL", "Transaction and Concurrency", "Tuple Relational Calculus",
	},
	"Digital Logic": {
		"Adder", "Array Multiplier", "Boolean Algebra", "Booths Algorithm", "Canonical Normal Form",
		"Carry Generator", "Circuit Output", "Combinational Circuit", "Decoder", "Digital Circuits",
		"Digital Counter", "Finite State Machines", "Fixed Point Representation", "Flip Flop",
		"Floating Point Representation", "Functional Completeness", "IEEE Representation", "K Map",
		"Memory Interfacing", "Min No Gates", "Min Products of Sum Form", "Min Sum of Products Form",
		"Multiplexer", "Number Representation", "Prime Implicants", "ROM", "Ripple Counter Operation",
		"Sequential Circuit", "Shift Registers", "Static Hazard", "Synchronous Asynchronous Circuits",
	},
	"Operating System": {
		"Context Switch", "Deadlock Prevention Avoidance Detection", "Disk", "Disk Scheduling", "File System",
		"Fork System Call", "IO Handling", "Input Output", "Inter Process Communication", "Interrupts",
		"Linked Allocation", "Memory Management", "Multilevel Paging", "OS Protection", "Optimal Page Replacement",
		"Page Replacement", "Precedence Graph", "Process", "Process Scheduling", "Process Synchronization",
		"Resource Allocation", "Resource Allocation Graph", "Semaphore", "Srtf", "System Calls", "Threads",
		"Virtual Memory",
	},
	"Programming and DS": {
		"AVL Tree", "Array", "Binary Heap", "Binary Search Tree", "Binary Tree", "Data Structures",
		"Hashing", "Infix Prefix", "Linked List", "Number of Swap", "Priority Queue", "Queue", "Stack",
		"Time Complexity", "Tree",
	},
	"Programming in C": {
		"Aliasing", "Array", "Functions", "Goto", "Identify Function", "Loop Invariants", "Output",
		"Parameter Passing", "Pointers", "Programming Constructs", "Programming In C", "Programming Paradigms",
		"Recursion", "Strings", "Structure", "Switch Case", "Type Checking", "Union", "Variable Binding",
	},
	"Theory of Computation": {
		"Closure Property", "Context Free Grammar", "Context Free Language", "Countable Uncountable Set",
		"Decidability", "Dpda", "Finite Automata", "Finite State Machines", "Identify Class Language",
		"Minimal State Automata", "Non Determinism", "Number of States", "Pumping Lemma", "Pushdown Automata",
		"Recursive and Recursively Enumerable Languages", "Reduction", "Regular Expression", "Regular Grammar",
		"Regular Language",
	},
}

// SubjectLabels returns the enum labels in declaration order.
func SubjectLabels() []string {
	labels := make([]string, len(Subjects))
	for i, s := range Subjects {
		labels[i] = s.Label
	}
	return labels
}

// SubjectLabelBySlug resolves a subject slug back to its display label,
// "Unknown" for anything outside the enum.
func SubjectLabelBySlug(slug string) string {
	for _, s := range Subjects {
		if s.Slug == slug {
			return s.Label
		}
	}
	return SubjectUnknown
}

// SubjectSlug slugifies a subject label; unresolved subjects map to "unknown".
func SubjectSlug(label string) string {
	if label == "" || label == SubjectUnknown {
		return SubjectUnknownSlug
	}
	for _, s := range Subjects {
		if s.Label == label {
			return s.Slug
		}
	}
	return SubjectUnknownSlug
}

// Subtopics returns the curated subtopic labels for a subject.
func Subtopics(subject string) []string {
	return topicHierarchy[subject]
}
