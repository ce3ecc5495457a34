// Copyright 2025 Mike-CZ
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

package registry

import "errors"

var (
	ErrNotProjectsManager = errors.New("not projects manager")
	ErrNotProjectOwner    = errors.New("not project owner")
	ErrProjectNotFound    = errors.New("project does not exist")
	ErrEmptyMetadataURI   = errors.New("empty metadata uri")
	ErrEmptyAddress       = errors.New("empty address")
	ErrContractRegistered = errors.New("contract already registered")
	ErrContractNotOwned   = errors.New("contract not registered")
	ErrProjectSuspended   = errors.New("project suspended")
	ErrProjectActive      = errors.New("project active")
)
