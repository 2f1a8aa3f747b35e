package api

// Fixed CSV columns. They are addressed by name; header order is free.
const (
	ColumnType         = "Type"
	ColumnBrowseName   = "BrowseName"
	ColumnBrowsePath   = "BrowsePath"
	ColumnNodeDataType = "NodeDataType"
	ColumnArrayLength  = "ArrayLength"
)

// FixedColumns lists the fixed columns in the order export writes them.
var FixedColumns = []string{
	ColumnType,
	ColumnBrowseName,
	ColumnBrowsePath,
	ColumnNodeDataType,
	ColumnArrayLength,
}

const (
	// Separator splits CSV cells.
	Separator = ';'
	// ArrayLengthSeparator splits the dimensions of an ArrayLength cell.
	ArrayLengthSeparator = ","
	// PathSeparator splits BrowsePath segments.
	PathSeparator = "/"

	DefaultCSVFile      = "tags.csv"
	DefaultTreeFile     = "tree.db"
	DefaultStartingNode = "Model/Tags"
	DefaultConfigFile   = "tagsync.hcl"
)
