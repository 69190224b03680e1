// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package awsutil

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/plateview/core/core/utils"
)

// MockS3Client - mock S3 client for unit tests. Don't forget to call FinishTest() at the end of your test to check
// that all calls to S3 were made, and there were no unexpected calls!
type MockS3Client struct {
	mutex sync.Mutex

	s3iface.S3API

	// Expected requests
	ExpListObjectsV2Input []s3.ListObjectsV2Input
	ExpGetObjectInput     []s3.GetObjectInput
	ExpHeadObjectInput    []s3.HeadObjectInput
	ExpPutObjectInput     []s3.PutObjectInput
	ExpDeleteObjectInput  []s3.DeleteObjectInput
	ExpCopyObjectInput    []s3.CopyObjectInput

	// Responses replayed as each request comes in
	QueuedListObjectsV2Output []*s3.ListObjectsV2Output
	QueuedGetObjectOutput     []*s3.GetObjectOutput
	QueuedHeadObjectOutput    []*s3.HeadObjectOutput
	QueuedPutObjectOutput     []*s3.PutObjectOutput
	QueuedDeleteObjectOutput  []*s3.DeleteObjectOutput
	QueuedCopyObjectOutput    []*s3.CopyObjectOutput

	// Render workers pull tiles and push finished mosaics in whatever order the
	// scheduler runs them, so tests covering parallel renders set these
	AllowGetInAnyOrder bool
	AllowPutInAnyOrder bool

	// Object names whose body we don't compare, eg summary files carrying timestamps
	SkipPutCheckNames []string
}

// NOTE: This function MUST be called at the end of a unit test/example test. Use defer when declaring MockS3Client!
func (m *MockS3Client) FinishTest() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.getFinishTestResult()

	// If we found something unexpected, print an error so any example tests get this in their input
	// Unit tests which aren't example based will still get our return value
	if err != nil {
		fmt.Println(err)
	}

	return err
}

func (m *MockS3Client) getFinishTestResult() error {
	// Expecting no inputs left
	if len(m.ExpListObjectsV2Input) > 0 {
		return errors.New("Test expected more ListObjectsV2 calls to func")
	}
	if len(m.ExpGetObjectInput) > 0 {
		return errors.New("Test expected more GetObject calls to func")
	}
	if len(m.ExpHeadObjectInput) > 0 {
		return errors.New("Test expected more HeadObject calls to func")
	}
	if len(m.ExpPutObjectInput) > 0 {
		return errors.New("Test expected more PutObject calls to func")
	}
	if len(m.ExpDeleteObjectInput) > 0 {
		return errors.New("Test expected more DeleteObject calls to func")
	}
	if len(m.ExpCopyObjectInput) > 0 {
		return errors.New("Test expected more CopyObject calls to func")
	}

	// Expecting nothing left to output
	if len(m.QueuedListObjectsV2Output) > 0 {
		return errors.New("Remaining output ListObjectsV2 for func")
	}
	if len(m.QueuedGetObjectOutput) > 0 {
		return errors.New("Remaining output GetObject for func")
	}
	if len(m.QueuedHeadObjectOutput) > 0 {
		return errors.New("Remaining output HeadObject for func")
	}
	if len(m.QueuedPutObjectOutput) > 0 {
		return errors.New("Remaining output PutObject for func")
	}
	if len(m.QueuedDeleteObjectOutput) > 0 {
		return errors.New("Remaining output DeleteObject for func")
	}
	if len(m.QueuedCopyObjectOutput) > 0 {
		return errors.New("Remaining output CopyObject for func")
	}

	return nil
}

const ErrNoMoreInputsExpected = "No more inputs expected for "
const ErrWrongInput = "Incorrect input in "
const ErrNothingToReturn = "Nothing to return from "
const ErrReturningError = "Returning error from "

// All the read-style S3 calls follow the same replay pattern: pop the next expected
// input, compare, pop the next queued output. A nil queued output stands in for the
// call failing, returned as notFoundErr if one is given for the operation.
func replayCall[I fmt.Stringer, O any](name string, expList *[]I, outputs *[]*O, input I, anyOrder bool, notFoundErr error) (*O, error) {
	if len(*expList) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expStr := ""
	inpStr := input.String()
	expListIdx := 0

	if anyOrder {
		// Multiple workers are calling at once, so search the expected list for a match
		for c, expItem := range *expList {
			strExpItem := expItem.String()
			if inpStr == strExpItem {
				expListIdx = c
				expStr = strExpItem

				// Don't need this any more!
				(*expList) = append((*expList)[:c], (*expList)[c+1:]...)
				break
			}
		}
	} else {
		// Expecting them to come in in the order defined... Get next one
		expStr = (*expList)[0].String()

		// Don't need this any more!
		(*expList) = (*expList)[1:]
	}

	// Check it matches expected
	if expStr != inpStr {
		return nil, fmt.Errorf("%v expected: \"%v\" S3 recvd: \"%v\"\n", ErrWrongInput+name, expStr, inpStr)
	}

	// Return something
	if len(*outputs) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := (*outputs)[expListIdx]

	// Don't need this any more!
	(*outputs) = append((*outputs)[:expListIdx], (*outputs)[expListIdx+1:]...)

	if result == nil {
		if notFoundErr != nil {
			return nil, notFoundErr
		}
		return nil, errors.New(ErrReturningError + name)
	}

	return result, nil
}

func (m *MockS3Client) ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return replayCall("ListObjectsV2", &m.ExpListObjectsV2Input, &m.QueuedListObjectsV2Output, *input, false, nil)
}

func (m *MockS3Client) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	notFound := awserr.New(s3.ErrCodeNoSuchKey, ErrReturningError+"GetObject", nil)
	return replayCall("GetObject", &m.ExpGetObjectInput, &m.QueuedGetObjectOutput, *input, m.AllowGetInAnyOrder, notFound)
}

func (m *MockS3Client) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// HeadObject on a missing key comes back as plain NotFound, not NoSuchKey
	notFound := awserr.New("NotFound", ErrReturningError+"HeadObject", nil)
	return replayCall("HeadObject", &m.ExpHeadObjectInput, &m.QueuedHeadObjectOutput, *input, false, notFound)
}

func (m *MockS3Client) DeleteObject(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return replayCall("DeleteObject", &m.ExpDeleteObjectInput, &m.QueuedDeleteObjectOutput, *input, false, nil)
}

func (m *MockS3Client) CopyObject(input *s3.CopyObjectInput) (*s3.CopyObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return replayCall("CopyObject", &m.ExpCopyObjectInput, &m.QueuedCopyObjectOutput, *input, false, nil)
}

func getAsStr(r io.Reader) string {
	if r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "ERROR GETTING DATA"
	}
	return string(data)
}

// PutObject can't go through replayCall because the body is an io.Reader, so inputs
// aren't comparable as strings. Bucket/key/body are checked separately, and body
// mismatches report the first differing line because rendered outputs can be big.
func (m *MockS3Client) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := "PutObject"
	expList := &m.ExpPutObjectInput
	outputs := &m.QueuedPutObjectOutput

	if len(*expList) <= 0 {
		return nil, errors.New(ErrNoMoreInputsExpected + name)
	}

	expListIdx := 0
	if m.AllowPutInAnyOrder {
		// Workers finish in any order, match on key
		for c, expItem := range *expList {
			if *input.Key == *expItem.Key {
				expListIdx = c
				break
			}
		}
	}

	expItem := (*expList)[expListIdx]

	// Don't need this any more!
	(*expList) = append((*expList)[:expListIdx], (*expList)[expListIdx+1:]...)

	// Check it matches
	if *input.Bucket != *expItem.Bucket {
		return nil, fmt.Errorf("%v %v - bucket\nexpected: \"%v\"\nS3 recvd: \"%v\"\n", ErrWrongInput, name, *expItem.Bucket, *input.Bucket)
	}

	if *input.Key != *expItem.Key {
		return nil, fmt.Errorf("%v %v - key\nexpected: \"%v\"\nS3 recvd: \"%v\"\n", ErrWrongInput, name, *expItem.Key, *input.Key)
	}

	if !utils.ItemInSlice(*input.Key, m.SkipPutCheckNames) {
		inpBody := getAsStr(input.Body)
		expBody := getAsStr(expItem.Body)
		if inpBody != expBody {
			inpBodyLines := strings.Split(inpBody, "\n")
			expBodyLines := strings.Split(expBody, "\n")

			loopToIdx := len(inpBodyLines)
			if l := len(expBodyLines); l > loopToIdx {
				loopToIdx = l
			}

			expLine := ""
			inpLine := ""

			c := 0
			for ; c < loopToIdx; c++ {
				if c >= len(inpBodyLines) || c >= len(expBodyLines) || inpBodyLines[c] != expBodyLines[c] {
					if c < len(inpBodyLines) {
						inpLine = inpBodyLines[c]
					}
					if c < len(expBodyLines) {
						expLine = expBodyLines[c]
					}
					break
				}
			}

			return nil, fmt.Errorf("%v %v - body\nline %v\nexpected: \"%v\"\nS3 recvd: \"%v\"\n", ErrWrongInput, name, c+1, expLine, inpLine)
		}
	}

	// Return something
	if len(*outputs) <= 0 {
		return nil, errors.New(ErrNothingToReturn + name)
	}

	result := (*outputs)[expListIdx]

	// Don't need this any more!
	(*outputs) = append((*outputs)[:expListIdx], (*outputs)[expListIdx+1:]...)

	if result == nil {
		return nil, errors.New(ErrReturningError + name)
	}

	return result, nil
}

func (m *MockS3Client) SkipPutChecks(path []string) {
	m.SkipPutCheckNames = path
}
