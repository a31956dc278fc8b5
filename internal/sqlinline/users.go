package sqlinline

const QInsertUser = `--sql 4eea12e6-9def-4580-b901-7960e4fa46cd
insert into users (id, email, name, password_hash, role, locale, is_premium, free_stories_used, daily_stories_count, created_at, updated_at)
values (gen_random_uuid(), lower($1::text), $2::text, $3::text, 'user', $4::text, false, 0, 0, now(), now())
returning id, email, name, role, locale, is_premium, free_stories_used, daily_stories_count, last_reset_date, paid_at, created_at, updated_at;
`

const QSelectUserByID = `--sql 3ba0a79e-2d03-48fd-a20a-386335e747da
select id, email, name, password_hash, role, locale, is_premium, free_stories_used, daily_stories_count, last_reset_date, paid_at, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 9f57c78a-a53e-42e6-b7db-ead38aa3eca1
select id, email, name, password_hash, role, locale, is_premium, free_stories_used, daily_stories_count, last_reset_date, paid_at, created_at, updated_at
from users
where email = lower($1::text)
limit 1;
`

// QSelectQuotaForUpdate locks the user row for the duration of the
// check-insert-apply transaction.
const QSelectQuotaForUpdate = `--sql 5939175c-be0a-4a1c-b03a-0cf3d7142e10
select is_premium, free_stories_used, daily_stories_count, last_reset_date
from users
where id = $1::uuid
for update;
`

const QUpdateQuotaCounters = `--sql a86b17be-3442-443a-b443-3e6f8cddc3f9
update users
set free_stories_used = $2::int,
    daily_stories_count = $3::int,
    last_reset_date = $4::timestamptz,
    updated_at = now()
where id = $1::uuid;
`

const QActivatePremium = `--sql 6bcca0da-e48d-4fb4-84c2-434761445928
update users
set is_premium = true,
    paid_at = $2::timestamptz,
    daily_stories_count = 0,
    last_reset_date = $2::timestamptz,
    updated_at = now()
where id = $1::uuid and is_premium = false
returning id;
`

const QRevokePremium = `--sql 4cf17611-44e5-45d1-a112-7230edf8ca8f
update users
set is_premium = false,
    paid_at = null,
    updated_at = now()
where id = $1::uuid
returning id;
`
