// Package assets provides the stylesheets and HTML templates used to print
// hymn and collection documents.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and templates (go:embed)
//	    ├── FilesystemLoader  - overrides from a directory on disk
//	    └── AssetResolver     - custom first, embedded as fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── hymn.css          # print rules for live hymn pages
//	│   └── collection.css    # assembled collection documents
//	└── templates/
//	    ├── collection.html   # collection document body (html/template)
//	    ├── header.html       # PDF page header
//	    └── footer.html       # PDF page footer
//
// An override directory only needs the files it replaces.
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
