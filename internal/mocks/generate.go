package mocks

//go:generate mockery --name EventStore --srcpkg github.com/vitrine-lab/vitrine/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name SummaryStore --srcpkg github.com/vitrine-lab/vitrine/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
