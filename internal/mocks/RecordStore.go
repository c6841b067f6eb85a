package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/examcert-server/internal/model"
)

var _ model.UpdatingRecordStore = (*RecordStore)(nil)

// RecordStore is a mock of model.UpdatingRecordStore.
// Update calls fn with the RecordSet given as its second return value when
// the first is nil and the expectation carries one.
type RecordStore struct {
	mock.Mock
}

func (m *RecordStore) Read(ctx context.Context, collection string) (model.RecordSet, error) {
	ret := m.Called(ctx, collection)
	return ret.Get(0).(model.RecordSet), ret.Error(1)
}

func (m *RecordStore) Write(ctx context.Context, collection string, records []model.Record) error {
	ret := m.Called(ctx, collection, records)
	return ret.Error(0)
}

func (m *RecordStore) Update(ctx context.Context, collection string, fn model.UpdateFunc) error {
	ret := m.Called(ctx, collection, fn)
	if err := ret.Error(0); err != nil {
		return err
	}
	if len(ret) > 1 {
		if current, ok := ret.Get(1).(model.RecordSet); ok {
			_, err := fn(current)
			return err
		}
	}
	return nil
}
