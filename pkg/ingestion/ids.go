// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/kraklabs/cdoc/pkg/docgen"
)

// cacheKeyVersion changes whenever the cached record format does.
const cacheKeyVersion = "v1"

// GenerateFileID generates a deterministic file ID from the file path.
// Long paths are hashed to keep IDs manageable.
func GenerateFileID(filePath string) string {
	normalized := normalizePath(filePath)
	if len(normalized) <= 256 {
		return "file:" + normalized
	}
	hash := sha256.Sum256([]byte(normalized))
	return "file:" + hex.EncodeToString(hash[:16])
}

// GenerateDeclarationID generates a deterministic declaration ID from the
// file, the function name and where the declaration starts. The
// declaration text is left out so IDs survive reformatting of the
// parameter list; line and column separate overloads.
func GenerateDeclarationID(filePath, name string, line, column int) string {
	idStr := fmt.Sprintf("%s|%s|%d|%d", normalizePath(filePath), name, line, column)
	hash := sha256.Sum256([]byte(idStr))
	return "decl:" + hex.EncodeToString(hash[:])
}

// ResultCacheKey identifies the scan result of one file. It covers the
// file content, the finder mode and every setting that shapes the
// generated comments, so a change to any of them misses the cache.
func ResultCacheKey(path string, content []byte, mode ParserMode, doc docgen.Config) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%+v|", cacheKeyVersion, normalizePath(path), mode, doc)
	h.Write(content)
	return "scan:" + cacheKeyVersion + ":" + hex.EncodeToString(h.Sum(nil))
}

// normalizePath makes paths comparable across platforms: no leading ./
// or /, forward slashes, and no redundant separators.
func normalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.ToSlash(filepath.Clean(path))
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}
