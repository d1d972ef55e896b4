// Copyright 2025 Quillstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extract

import "errors"

var (
	// ErrUnreadableFile indicates the scratch file cannot be opened or its
	// bytes are not valid for the declared encoding.
	ErrUnreadableFile = errors.New("unreadable file")

	// ErrUnsupportedEncoding indicates the declared encoding is not handled.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)
